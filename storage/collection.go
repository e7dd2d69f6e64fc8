package storage

import (
	"sync"

	"github.com/itiky/employee-sync/model"
)

type (
	// Collection keeps the Storage state alongside its version history.
	Collection struct {
		sync.RWMutex
		// List of collection versions
		versions []Version
		// Latest version storage state
		storage *Storage
	}

	Version struct {
		Number int
		// Client model.RecordList operations to apply in order to upgrade it
		OutputOperations []model.ListOperation
	}
)

// Apply updates the storage state and adds a new Version if anything has changed.
// Returns the latest version number and list operations performed.
func (c *Collection) Apply(stOps ...StorageOperation) (int, []model.ListOperation) {
	c.Lock()
	defer c.Unlock()

	listOps := c.storage.ApplyOperations(stOps...)
	if len(listOps) == 0 {
		return c.latestVersion(), nil
	}

	c.versions = append(c.versions, Version{
		Number:           len(c.versions),
		OutputOperations: listOps,
	})

	return c.latestVersion(), listOps
}

// Snapshot returns the latest version number and the list response data.
func (c *Collection) Snapshot() (int, []model.EmployeeData) {
	c.RLock()
	defer c.RUnlock()

	return c.latestVersion(), c.storage.Export()
}

// DiffWithLatest returns the latest version number and list operations
// to apply on a snapshot of the specified version in order to upgrade it.
func (c *Collection) DiffWithLatest(version int) (int, []model.ListOperation) {
	c.RLock()
	defer c.RUnlock()

	latest := c.latestVersion()
	if version < 0 || version >= latest {
		return latest, nil
	}

	diffOps := make([]model.ListOperation, 0)
	for i := version + 1; i <= latest; i++ {
		diffOps = append(diffOps, c.versions[i].OutputOperations...)
	}

	return latest, diffOps
}

// Len returns the number of alive items.
func (c *Collection) Len() int {
	c.RLock()
	defer c.RUnlock()

	return c.storage.Len()
}

// latestVersion returns the current version number (v0 is the initial state).
func (c *Collection) latestVersion() int {
	return len(c.versions) - 1
}

// NewCollection creates a new Collection with the initial version (v0) built from storage.
func NewCollection(storage *Storage) *Collection {
	if storage == nil {
		storage = NewStorage()
	}

	return &Collection{
		storage:  storage,
		versions: []Version{{Number: 0}},
	}
}
