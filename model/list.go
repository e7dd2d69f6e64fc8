package model

import (
	"fmt"
	"strings"
)

type (
	// RecordList is the client local list state (server order is kept).
	RecordList []Record

	// ListOperation is an operation performed on RecordList on the client side.
	ListOperation struct {
		Type   OperationType
		Id     RecordId
		Record Record
	}
)

// String implements the stringer interface.
func (l RecordList) String() string {
	str := strings.Builder{}
	for i, item := range l {
		str.WriteString(fmt.Sprintf("- [%d] %s: %s / %s / %s\n", i, item.Id, item.Name, item.Salary, item.Age))
	}

	return str.String()
}

// IndexOf returns the record index by id or -1 if not found.
func (l RecordList) IndexOf(id RecordId) int {
	for i, item := range l {
		if item.Id == id {
			return i
		}
	}

	return -1
}

// Get returns the record by id.
func (l RecordList) Get(id RecordId) (Record, bool) {
	idx := l.IndexOf(id)
	if idx < 0 {
		return Record{}, false
	}

	return l[idx], true
}

// Copy returns a detached copy of the list.
func (l RecordList) Copy() RecordList {
	if l == nil {
		return nil
	}
	listCopy := make(RecordList, len(l))
	copy(listCopy, l)

	return listCopy
}

// NewRecordList normalizes list response items keeping the server order.
func NewRecordList(items []EmployeeData) RecordList {
	list := make(RecordList, 0, len(items))
	for _, item := range items {
		list = append(list, item.ToRecord())
	}

	return list
}

// ApplyListOperations builds a new RecordList version using ListOperation objects.
// The input list is not modified.
func ApplyListOperations(l RecordList, ops ...ListOperation) (RecordList, error) {
	l = l.Copy()

	for i, op := range ops {
		if op.Id == "" {
			return nil, fmt.Errorf("op[%d] (%s): id: empty", i, op.Type)
		}

		switch op.Type {

		case InsertOperationType:
			if l.IndexOf(op.Id) >= 0 {
				return nil, fmt.Errorf("op[%d] (%s): id %s: already exists", i, op.Type, op.Id)
			}

			// Append (insertion order)
			item := op.Record
			item.Id = op.Id
			l = append(l, item)

		case UpdateOperationType:
			idx := l.IndexOf(op.Id)
			if idx < 0 {
				return nil, fmt.Errorf("op[%d] (%s): id %s: not found", i, op.Type, op.Id)
			}

			// Replace in place
			item := op.Record
			item.Id = op.Id
			l[idx] = item

		case DeleteOperationType:
			idx := l.IndexOf(op.Id)
			if idx < 0 {
				return nil, fmt.Errorf("op[%d] (%s): id %s: not found", i, op.Type, op.Id)
			}

			// Cut
			l = append(l[:idx], l[idx+1:]...)

		default:
			return nil, fmt.Errorf("op[%d] (%s): unknown type", i, op.Type)

		}
	}

	return l, nil
}
