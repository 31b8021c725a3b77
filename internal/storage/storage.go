// Package storage defines the Roster contract: the authoritative, ordered
// list of accepted student records.
//
// Any backend (memory slice, in-memory SQLite, ...) that implements Roster
// can be passed to the registration service and the HTTP handlers. None of
// them outlive the process: the roster is empty on every start.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-registry/internal/types"
)

// ErrNotFound is returned by FindByID when no record has the given id.
var ErrNotFound = errors.New("student not found")

// Roster is the contract every backend must satisfy.
type Roster interface {
	// Add stores the record under a freshly assigned id and returns it
	// with the id set. Ids are never reused, even after removal.
	Add(student types.Student) (types.Student, error)

	// FindByID returns ErrNotFound when absent.
	FindByID(id int64) (types.Student, error)

	// RemoveByID is a no-op, not an error, when the id is absent.
	RemoveByID(id int64) error

	// All returns the records oldest first.
	All() ([]types.Student, error)

	// Reset empties the roster and restarts id assignment at 1.
	Reset() error
}
