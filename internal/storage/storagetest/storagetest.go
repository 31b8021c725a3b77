// Package storagetest holds the behaviour every storage.Roster backend must
// show. Backend test files call Run with a constructor.
package storagetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
)

// Student returns a record with the given first name and valid other fields.
func Student(first string) types.Student {
	return types.Student{
		FirstName: first,
		LastName:  "Li",
		Email:     first + "@x.com",
		Programme: "CS",
		Year:      "2",
		Photo:     "data:image/png;base64,AA==",
	}
}

// Run exercises a fresh roster returned by newRoster for every subtest.
func Run(t *testing.T, newRoster func(t *testing.T) storage.Roster) {
	t.Run("starts empty", func(t *testing.T) {
		r := newRoster(t)
		all, err := r.All()
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("add then find", func(t *testing.T) {
		r := newRoster(t)

		added, err := r.Add(Student("Ana"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), added.ID)

		got, err := r.FindByID(added.ID)
		require.NoError(t, err)
		assert.Equal(t, added, got)
	})

	t.Run("find missing", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.FindByID(7)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("all is insertion ordered", func(t *testing.T) {
		r := newRoster(t)
		for _, name := range []string{"Ana", "Bo", "Cy"} {
			_, err := r.Add(Student(name))
			require.NoError(t, err)
		}

		all, err := r.All()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})
		assert.Equal(t, "Cy", all[2].FirstName)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		r := newRoster(t)
		a, err := r.Add(Student("Ana"))
		require.NoError(t, err)
		b, err := r.Add(Student("Bo"))
		require.NoError(t, err)

		require.NoError(t, r.RemoveByID(a.ID))
		_, err = r.FindByID(a.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		once, err := r.All()
		require.NoError(t, err)

		require.NoError(t, r.RemoveByID(a.ID))
		twice, err := r.All()
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		assert.Equal(t, []types.Student{b}, twice)

		require.NoError(t, r.RemoveByID(999))
	})

	t.Run("ids are never reused", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.Add(Student("Ana"))
		require.NoError(t, err)
		b, err := r.Add(Student("Bo"))
		require.NoError(t, err)
		require.NoError(t, r.RemoveByID(b.ID))

		c, err := r.Add(Student("Cy"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), c.ID)
	})

	t.Run("reset restarts ids", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.Add(Student("Ana"))
		require.NoError(t, err)
		require.NoError(t, r.Reset())

		all, err := r.All()
		require.NoError(t, err)
		assert.Empty(t, all)

		a, err := r.Add(Student("Bo"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.ID)
	})

	t.Run("concurrent add and all", func(t *testing.T) {
		r := newRoster(t)

		const workers, rounds = 4, 200
		errs := make(chan error, 2*workers*rounds)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(2)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < rounds; i++ {
					if _, err := r.Add(Student(fmt.Sprintf("S%d-%d", w, i))); err != nil {
						errs <- err
					}
				}
			}(w)
			go func() {
				defer wg.Done()
				for i := 0; i < rounds; i++ {
					if _, err := r.All(); err != nil {
						errs <- err
					}
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		all, err := r.All()
		require.NoError(t, err)
		require.Len(t, all, workers*rounds)

		seen := make(map[int64]bool, len(all))
		for _, s := range all {
			assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
			seen[s.ID] = true
		}
	})
}
