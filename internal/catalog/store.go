package catalog

import (
	"sync/atomic"
)

// Store holds the process's current catalog behind an atomic pointer.
// Readers take a snapshot with Current and keep it for the duration of
// a resolution call; a reload swaps the pointer and never mutates a
// catalog in place, so in-flight calls are unaffected.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore creates a store serving the given catalog.
func NewStore(cat *Catalog) *Store {
	s := &Store{}
	s.current.Store(cat)
	return s
}

// Current returns the catalog snapshot to use for one resolution call.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap atomically replaces the served catalog and returns the previous
// one.
func (s *Store) Swap(cat *Catalog) *Catalog {
	return s.current.Swap(cat)
}
