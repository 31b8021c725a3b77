package sqlite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/storage/storagetest"
)

// dbName gives every subtest its own memory database.
func dbName(t *testing.T) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
}

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Roster {
		s, err := Open(dbName(t))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
