package storage

import (
	"strconv"
	"time"

	"github.com/itiky/employee-sync/model"
)

type (
	// ItemFields keeps the employee free-text fields.
	ItemFields struct {
		Name   string `yaml:"name"`
		Salary string `yaml:"salary"`
		Age    string `yaml:"age"`
	}

	// Item keep Storage element data.
	Item struct {
		Id         int64 `yaml:"id"`
		ItemFields `yaml:",inline"`
		IsDeleted  bool      `yaml:"deleted,omitempty"`
		CreatedAt  time.Time `yaml:"created_at"`
		UpdatedAt  time.Time `yaml:"updated_at"`
	}
)

// RecordId returns the model identifier.
func (i Item) RecordId() model.RecordId {
	return model.RecordId(strconv.FormatInt(i.Id, 10))
}

// Record converts Item to the model.Record.
func (i Item) Record() model.Record {
	return model.Record{
		Id:     i.RecordId(),
		Name:   i.Name,
		Salary: i.Salary,
		Age:    i.Age,
	}
}

// EmployeeData converts Item to the list response item.
func (i Item) EmployeeData() model.EmployeeData {
	return model.EmployeeData{
		Id:     i.RecordId(),
		Name:   model.Text(i.Name),
		Salary: model.Text(i.Salary),
		Age:    model.Text(i.Age),
	}
}

// NewStorageItem creates a new Item object (no validation as it is used internaly).
func NewStorageItem(itemId int64, fields ItemFields, timestamp time.Time) *Item {
	return &Item{
		Id:         itemId,
		ItemFields: fields,
		CreatedAt:  timestamp,
		UpdatedAt:  timestamp,
	}
}

// NewItemFields builds ItemFields from the request body.
func NewItemFields(req model.WriteRequest) ItemFields {
	return ItemFields{
		Name:   req.Name,
		Salary: req.Salary,
		Age:    req.Age,
	}
}
