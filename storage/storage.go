package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itiky/employee-sync/model"
)

type (
	// Storage keeps Item elements alongside the insertion ordered list view.
	// Storage implements the "soft delete" methodology.
	Storage struct {
		list        []*Item
		idDataMatch map[int64]*Item
		lastId      int64
	}
)

// String implements stringer interface.
func (s *Storage) String() string {
	str := strings.Builder{}
	for i, item := range s.list {
		str.WriteString(fmt.Sprintf("- [%d] %d: %s\n", i, item.Id, item.Name))
	}

	return str.String()
}

// Export builds a model.EmployeeData slice (snapshot) in insertion order.
func (s *Storage) Export() []model.EmployeeData {
	list := make([]model.EmployeeData, 0, len(s.list))
	for _, item := range s.list {
		list = append(list, item.EmployeeData())
	}

	return list
}

// Len returns the number of alive items.
func (s *Storage) Len() int {
	return len(s.list)
}

// ApplyOperations updates storage state with StorageOperation list and returns list operations performed.
// Operations targeting unknown items are skipped.
func (s *Storage) ApplyOperations(ops ...StorageOperation) []model.ListOperation {
	listOps := make([]model.ListOperation, 0, len(ops))

	for _, op := range ops {
		if op == nil {
			continue
		}

		if listOp := op.Apply(s); listOp != nil {
			listOps = append(listOps, *listOp)
		}
	}

	return listOps
}

// create adds a new Item assigning the next sequential id.
func (s *Storage) create(fields ItemFields, timestamp time.Time) *model.ListOperation {
	s.lastId++
	item := NewStorageItem(s.lastId, fields, timestamp)

	s.idDataMatch[item.Id] = item
	s.list = append(s.list, item)

	return &model.ListOperation{
		Type:   model.InsertOperationType,
		Id:     item.RecordId(),
		Record: item.Record(),
	}
}

// update updates an existing Item keeping its list position.
func (s *Storage) update(itemId int64, fields ItemFields, timestamp time.Time) *model.ListOperation {
	item, found := s.idDataMatch[itemId]
	if !found || item.IsDeleted {
		return nil
	}

	item.ItemFields = fields
	item.UpdatedAt = timestamp

	return &model.ListOperation{
		Type:   model.UpdateOperationType,
		Id:     item.RecordId(),
		Record: item.Record(),
	}
}

// delete marks an existing Item as deleted and cuts it from the list.
func (s *Storage) delete(itemId int64, timestamp time.Time) *model.ListOperation {
	item, found := s.idDataMatch[itemId]
	if !found || item.IsDeleted {
		return nil
	}

	// Mark as deleted
	item.IsDeleted = true
	item.UpdatedAt = timestamp

	// Cut
	itemIdx := s.findItemIdx(item)
	s.list = append(s.list[:itemIdx], s.list[itemIdx+1:]...)

	return &model.ListOperation{
		Type: model.DeleteOperationType,
		Id:   item.RecordId(),
	}
}

// findItemIdx returns the specified item index.
// Panics on failure (should not happen).
func (s *Storage) findItemIdx(item *Item) int {
	for i := range s.list {
		if s.list[i].Id == item.Id {
			return i
		}
	}
	panic("item not found: by id")
}

// NewStorage creates a new Storage object.
func NewStorage() *Storage {
	return &Storage{
		idDataMatch: make(map[int64]*Item),
	}
}

// parseItemId converts a model.RecordId to the storage id.
func parseItemId(id string) (int64, error) {
	itemId, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid: %w", "itemId", err)
	}
	if itemId <= 0 {
		return 0, fmt.Errorf("%s: must be GT 0", "itemId")
	}

	return itemId, nil
}
