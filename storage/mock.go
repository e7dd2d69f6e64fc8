package storage

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var mockNames = []string{
	"Tiger Nixon", "Garrett Winters", "Ashton Cox", "Cedric Kelly", "Airi Satou",
	"Brielle Williamson", "Herrod Chandler", "Rhona Davidson", "Colleen Hurst", "Sonya Frost",
}

// Seed is the storage fixture file format.
type Seed struct {
	Employees []Item `yaml:"employees"`
}

// GenAndSaveInitialStorage generates random storage objects and saves them to a YAML fixture.
func GenAndSaveInitialStorage(filePath string, storageSize int) error {
	if storageSize <= 0 {
		return fmt.Errorf("%s: must be GT 0", "storageSize")
	}

	log.Infof("Creating objects...")
	seed := Seed{
		Employees: newStorageMockObjs(storageSize, time.Now().UTC()),
	}

	log.Infof("YAML marshal...")
	seedRaw, err := yaml.Marshal(seed)
	if err != nil {
		return fmt.Errorf("YAML marshal: %w", err)
	}

	log.Infof("Saving file...")
	if err := os.WriteFile(filePath, seedRaw, 0644); err != nil {
		return fmt.Errorf("write to file (%s): %w", filePath, err)
	}

	log.Infof("Done")

	return nil
}

// NewCollectionFromFile builds the Collection object with a single version (v0) from the fixture file.
// An empty filePath creates an empty Collection.
func NewCollectionFromFile(filePath string) (*Collection, error) {
	if filePath == "" {
		return NewCollection(nil), nil
	}

	log.Infof("Reading file...")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file (%s): %w", filePath, err)
	}

	log.Infof("YAML unmarshal...")
	seed := Seed{}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("YAML unmarshal: %w", err)
	}

	storage, err := newStorageFromObjs(seed.Employees)
	if err != nil {
		return nil, fmt.Errorf("fixture (%s): %w", filePath, err)
	}
	log.Infof("Storage created: %d items", storage.Len())

	return NewCollection(storage), nil
}

// newStorageMockObjs builds mocks storage objects.
func newStorageMockObjs(n int, now time.Time) []Item {
	objs := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		objs = append(objs, newStorageMockObj(int64(i+1), now))
	}

	return objs
}

// newStorageMockObj builds mocks storage object.
func newStorageMockObj(id int64, now time.Time) Item {
	return Item{
		Id: id,
		ItemFields: ItemFields{
			Name:   mockNames[rand.Intn(len(mockNames))],
			Salary: strconv.Itoa(1000 + rand.Intn(500000)),
			Age:    strconv.Itoa(18 + rand.Intn(50)),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newStorageFromObjs builds the Storage object from storage items keeping their order.
func newStorageFromObjs(objs []Item) (*Storage, error) {
	s := NewStorage()

	s.list = make([]*Item, 0, len(objs))
	for idx := 0; idx < len(objs); idx++ {
		item := &objs[idx]
		if item.Id <= 0 {
			return nil, fmt.Errorf("item[%d]: id: must be GT 0", idx)
		}
		if _, found := s.idDataMatch[item.Id]; found {
			return nil, fmt.Errorf("item[%d]: id %d: duplicate", idx, item.Id)
		}

		s.idDataMatch[item.Id] = item
		if item.Id > s.lastId {
			s.lastId = item.Id
		}
		if !item.IsDeleted {
			s.list = append(s.list, item)
		}
	}

	return s, nil
}
