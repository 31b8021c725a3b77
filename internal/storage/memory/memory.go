// Package memory is the default Roster backend: a slice guarded by a mutex.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
)

// Memory keeps records in insertion order.
type Memory struct {
	mu       sync.RWMutex
	students []types.Student
	lastID   int64
}

// New returns an empty roster.
func New() *Memory {
	return &Memory{students: make([]types.Student, 0)}
}

func (m *Memory) Add(student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	student.ID = m.lastID
	m.students = append(m.students, student)
	return student, nil
}

func (m *Memory) FindByID(id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.students {
		if s.ID == id {
			return s, nil
		}
	}
	return types.Student{}, fmt.Errorf("FindByID %d: %w", id, storage.ErrNotFound)
}

func (m *Memory) RemoveByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.students = slices.DeleteFunc(m.students, func(s types.Student) bool {
		return s.ID == id
	})
	return nil
}

func (m *Memory) All() ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.students), nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.students = m.students[:0]
	m.lastID = 0
	return nil
}
