// Package challenges holds outstanding OTP challenges in process memory.
//
// A challenge stays valid, and reusable, until a new request for the same key
// overwrites it. There is no expiry and no single-use enforcement; callers
// that need either can swap in their own Store implementation.
package challenges

import (
	"sync"

	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

// Challenge is anything carrying the code a client must echo back.
type Challenge interface {
	ChallengeCode() string
}

// Store maps a key to its latest challenge. Put overwrites unconditionally.
type Store[V Challenge] interface {
	Put(key string, v V)
	Get(key string) (V, bool)
	// Matches reports whether a challenge exists for key and its code equals
	// code exactly.
	Matches(key, code string) (V, bool)
}

// MemoryStore is a mutex-guarded map implementation of Store.
type MemoryStore[V Challenge] struct {
	mu sync.RWMutex
	m  map[string]V
}

func NewMemoryStore[V Challenge]() *MemoryStore[V] {
	return &MemoryStore[V]{m: make(map[string]V)}
}

func (s *MemoryStore[V]) Put(key string, v V) {
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

func (s *MemoryStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

func (s *MemoryStore[V]) Matches(key, code string) (V, bool) {
	v, ok := s.Get(key)
	if !ok || v.ChallengeCode() != code {
		var zero V
		return zero, false
	}
	return v, true
}

// Len returns the number of keys with an outstanding challenge.
func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Registry groups the two independent challenge maps: registrations keyed
// by username and resets keyed by email.
type Registry struct {
	Registrations Store[models.PendingRegistration]
	Resets        Store[models.PendingReset]
}

// NewRegistry returns a Registry backed by in-memory maps.
func NewRegistry() *Registry {
	return &Registry{
		Registrations: NewMemoryStore[models.PendingRegistration](),
		Resets:        NewMemoryStore[models.PendingReset](),
	}
}
