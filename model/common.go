package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type (
	// RecordId is an opaque record identifier assigned by the remote collection.
	RecordId string

	// Text is a free-text value that accepts both JSON strings and numbers on decode.
	Text string
)

type OperationType string

const (
	InsertOperationType OperationType = "insert"
	UpdateOperationType OperationType = "update"
	DeleteOperationType OperationType = "delete"
)

// Field is a PendingEdit field name.
type Field string

const (
	FieldName   Field = "name"
	FieldSalary Field = "salary"
	FieldAge    Field = "age"
)

var ErrUnknownField = errors.New("unknown field")

// ParseField converts the input string to a known Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldName, FieldSalary, FieldAge:
		return f, nil
	}

	return "", fmt.Errorf("%q: %w", s, ErrUnknownField)
}

// String implements the stringer interface.
func (id RecordId) String() string {
	return string(id)
}

// MarshalJSON implements the json.Marshaler interface.
// Integer ids are emitted as JSON numbers, everything else as strings.
func (id RecordId) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (id *RecordId) UnmarshalJSON(data []byte) error {
	s, err := unmarshalScalar(data)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = RecordId(s)

	return nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Text) UnmarshalJSON(data []byte) error {
	s, err := unmarshalScalar(data)
	if err != nil {
		return err
	}
	*t = Text(s)

	return nil
}

// unmarshalScalar decodes a JSON string, number or null into its textual form.
// Numbers keep their literal text.
func unmarshalScalar(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported JSON value: %s", string(data))
	}
}
