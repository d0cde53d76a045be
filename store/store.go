// ABOUTME: In-memory ordered entity collections seeded at process start
// ABOUTME: Newest records first; values are cloned on the way in and out
package store

import (
	"sync"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/models"
)

// Record is the shape every stored entity has.
type Record[T any] interface {
	EntityID() string
	Clone() T
}

// Collection is an ordered set of records of one entity type.
// Implementations must never hand out values that alias their storage.
type Collection[T Record[T]] interface {
	// All returns every record in display order.
	All() ([]T, error)
	// Find returns the record with id, or false.
	Find(id string) (T, bool, error)
	// Prepend inserts rec as the newest record.
	Prepend(rec T) error
	// Replace overwrites the record with rec's id, reporting whether one existed.
	Replace(rec T) (bool, error)
	// Remove deletes the record with id, reporting whether one existed.
	Remove(id string) (bool, error)
	// Len returns the number of records.
	Len() (int, error)
}

// Memory is a slice-backed Collection.
type Memory[T Record[T]] struct {
	mu      sync.RWMutex
	records []T
}

var _ Collection[models.Contact] = (*Memory[models.Contact])(nil)

// NewMemory returns a collection holding copies of seed in the given order.
func NewMemory[T Record[T]](seed []T) *Memory[T] {
	records := make([]T, len(seed))
	for i, rec := range seed {
		records[i] = rec.Clone()
	}
	return &Memory[T]{records: records}
}

func (m *Memory[T]) All() ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, len(m.records))
	for i, rec := range m.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (m *Memory[T]) Find(id string) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.records[i].Clone(), true, nil
	}
	var zero T
	return zero, false, nil
}

func (m *Memory[T]) Prepend(rec T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]T, 0, len(m.records)+1)
	records = append(records, rec.Clone())
	m.records = append(records, m.records...)
	return nil
}

func (m *Memory[T]) Replace(rec T) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(rec.EntityID())
	if i < 0 {
		return false, nil
	}
	m.records[i] = rec.Clone()
	return true, nil
}

func (m *Memory[T]) Remove(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	m.records = append(m.records[:i:i], m.records[i+1:]...)
	return true, nil
}

func (m *Memory[T]) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// indexOf must be called with the lock held.
func (m *Memory[T]) indexOf(id string) int {
	for i, rec := range m.records {
		if rec.EntityID() == id {
			return i
		}
	}
	return -1
}

// Set bundles the three entity collections of one process.
type Set struct {
	Contacts   Collection[models.Contact]
	Deals      Collection[models.Deal]
	Activities Collection[models.Activity]
}

// NewSet builds in-memory collections from seed.
func NewSet(seed mockdata.Seed) *Set {
	return &Set{
		Contacts:   NewMemory(seed.Contacts),
		Deals:      NewMemory(seed.Deals),
		Activities: NewMemory(seed.Activities),
	}
}
