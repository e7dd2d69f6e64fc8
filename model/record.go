package model

type (
	// Record is a normalized employee entity kept by the client.
	Record struct {
		Id     RecordId
		Name   string
		Salary string
		Age    string
	}

	// PendingEdit is the transient create/update form state.
	PendingEdit struct {
		Name     string
		Salary   string
		Age      string
		IsUpdate bool
		TargetId RecordId
	}
)

// PlaceholderUpdate is the fixed body sent by the update path in UpdateModeFixed.
var PlaceholderUpdate = WriteRequest{
	Name:   "test",
	Salary: "123",
	Age:    "23",
}

// Set updates a single field.
// No validation is performed: empty and non-numeric values are accepted.
func (e *PendingEdit) Set(field Field, value string) {
	switch field {
	case FieldName:
		e.Name = value
	case FieldSalary:
		e.Salary = value
	case FieldAge:
		e.Age = value
	}
}

// WriteRequest builds the create/update request body from the form fields.
func (e PendingEdit) WriteRequest() WriteRequest {
	return WriteRequest{
		Name:   e.Name,
		Salary: e.Salary,
		Age:    e.Age,
	}
}

// IsEmpty checks if the edit equals the empty edit.
func (e PendingEdit) IsEmpty() bool {
	return e == PendingEdit{}
}

// ToRecord normalizes the prefixed list item into a Record.
func (d EmployeeData) ToRecord() Record {
	return Record{
		Id:     d.Id,
		Name:   string(d.Name),
		Salary: string(d.Salary),
		Age:    string(d.Age),
	}
}

// ToRecord converts the write result into a Record using the request as a fallback for omitted fields.
func (r WriteResult) ToRecord(req WriteRequest) Record {
	rec := Record{
		Id:     r.Id,
		Name:   string(r.Name),
		Salary: string(r.Salary),
		Age:    string(r.Age),
	}
	if rec.Name == "" {
		rec.Name = req.Name
	}
	if rec.Salary == "" {
		rec.Salary = req.Salary
	}
	if rec.Age == "" {
		rec.Age = req.Age
	}

	return rec
}
