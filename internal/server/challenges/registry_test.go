package challenges

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/chatshield/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore[models.PendingRegistration]()

	s.Put("alice", models.PendingRegistration{Password: "first123", Email: "a@x.io", Code: "111111"})
	s.Put("alice", models.PendingRegistration{Password: "second12", Email: "b@x.io", Code: "222222"})

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "second12", got.Password)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Matches("alice", "111111")
	assert.False(t, ok, "overwritten code must not verify")

	got, ok = s.Matches("alice", "222222")
	assert.True(t, ok)
	assert.Equal(t, "b@x.io", got.Email)
}

func TestMemoryStore_MatchesIsReusable(t *testing.T) {
	s := NewMemoryStore[models.PendingReset]()
	s.Put("a@x.io", models.PendingReset{Code: "123456"})

	for i := 0; i < 3; i++ {
		_, ok := s.Matches("a@x.io", "123456")
		assert.True(t, ok)
	}
}

func TestMemoryStore_MatchesMisses(t *testing.T) {
	s := NewMemoryStore[models.PendingReset]()
	s.Put("a@x.io", models.PendingReset{Code: "123456"})

	_, ok := s.Matches("b@x.io", "123456")
	assert.False(t, ok)
	_, ok = s.Matches("a@x.io", "654321")
	assert.False(t, ok)
	_, ok = s.Matches("a@x.io", "")
	assert.False(t, ok)

	_, ok = s.Get("b@x.io")
	assert.False(t, ok)
}

func TestMemoryStore_ConcurrentPutsLastWriterWins(t *testing.T) {
	s := NewMemoryStore[models.PendingReset]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put("k", models.PendingReset{Code: fmt.Sprintf("%06d", i)})
		}(i)
	}
	wg.Wait()

	got, ok := s.Get("k")
	require.True(t, ok)
	_, ok = s.Matches("k", got.Code)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestRegistry_MapsAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Registrations.Put("same", models.PendingRegistration{Code: "111111"})
	r.Resets.Put("same", models.PendingReset{Code: "222222"})

	_, ok := r.Registrations.Matches("same", "222222")
	assert.False(t, ok)
	_, ok = r.Resets.Matches("same", "222222")
	assert.True(t, ok)
}
