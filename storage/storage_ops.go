package storage

import (
	"fmt"
	"time"

	"github.com/itiky/employee-sync/model"
)

type (
	// StorageOperation is an operation performed on Storage to update its state.
	StorageOperation interface {
		// Update the storage state
		Apply(s *Storage) *model.ListOperation
		// Used for logging
		GetType() model.OperationType
	}

	// CreateOperation implements StorageOperation interface for create operation.
	CreateOperation struct {
		Fields    ItemFields
		CreatedAt time.Time
	}

	// UpdateOperation implements StorageOperation interface for update operation.
	UpdateOperation struct {
		Id        int64
		Fields    ItemFields
		UpdatedAt time.Time
	}

	// DeleteOperation implements StorageOperation interface for delete operation.
	DeleteOperation struct {
		Id        int64
		DeletedAt time.Time
	}
)

// Apply implements StorageOperation interface.
func (o CreateOperation) Apply(s *Storage) *model.ListOperation {
	return s.create(o.Fields, o.CreatedAt)
}

// GetType implements StorageOperation interface.
func (o CreateOperation) GetType() model.OperationType {
	return model.InsertOperationType
}

// Apply implements StorageOperation interface.
func (o UpdateOperation) Apply(s *Storage) *model.ListOperation {
	return s.update(o.Id, o.Fields, o.UpdatedAt)
}

// GetType implements StorageOperation interface.
func (o UpdateOperation) GetType() model.OperationType {
	return model.UpdateOperationType
}

// Apply implements StorageOperation interface.
func (o DeleteOperation) Apply(s *Storage) *model.ListOperation {
	return s.delete(o.Id, o.DeletedAt)
}

// GetType implements StorageOperation interface.
func (o DeleteOperation) GetType() model.OperationType {
	return model.DeleteOperationType
}

// NewCreateOperation creates a valid StorageOperation object.
func NewCreateOperation(req model.WriteRequest, timestamp time.Time) (CreateOperation, error) {
	if timestamp.IsZero() {
		return CreateOperation{}, fmt.Errorf("%s: zero", "timestamp")
	}

	return CreateOperation{
		Fields:    NewItemFields(req),
		CreatedAt: timestamp,
	}, nil
}

// NewUpdateOperation creates a valid StorageOperation object.
func NewUpdateOperation(itemId string, req model.WriteRequest, timestamp time.Time) (UpdateOperation, error) {
	id, err := parseItemId(itemId)
	if err != nil {
		return UpdateOperation{}, err
	}
	if timestamp.IsZero() {
		return UpdateOperation{}, fmt.Errorf("%s: zero", "timestamp")
	}

	return UpdateOperation{
		Id:        id,
		Fields:    NewItemFields(req),
		UpdatedAt: timestamp,
	}, nil
}

// NewDeleteOperation creates a valid StorageOperation object.
func NewDeleteOperation(itemId string, timestamp time.Time) (DeleteOperation, error) {
	id, err := parseItemId(itemId)
	if err != nil {
		return DeleteOperation{}, err
	}
	if timestamp.IsZero() {
		return DeleteOperation{}, fmt.Errorf("%s: zero", "timestamp")
	}

	return DeleteOperation{
		Id:        id,
		DeletedAt: timestamp,
	}, nil
}
