package attendance

import (
	"errors"
	"fmt"
	"sync"

	"rollcall/internal/roster"
)

// ErrCardinality is returned when a replacement list changes the number of records.
var ErrCardinality = errors.New("record count is fixed for the session")

// Store owns the in-memory record list. The list is only ever swapped whole.
type Store struct {
	mu      sync.RWMutex
	records []roster.Record
}

// NewStore seeds a store with records.
func NewStore(seed []roster.Record) (*Store, error) {
	if err := roster.Validate(seed); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &Store{records: roster.Clone(seed)}, nil
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []roster.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roster.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Replace swaps the whole list.
func (s *Store) Replace(next []roster.Record) error {
	if err := roster.Validate(next); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(next) != len(s.records) {
		return fmt.Errorf("%w: have %d, got %d", ErrCardinality, len(s.records), len(next))
	}
	s.records = roster.Clone(next)
	return nil
}

// Dispatch applies action to the current list and stores the result.
// Read and replace happen under one lock.
func (s *Store) Dispatch(action roster.Action) []roster.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = roster.Reduce(s.records, action)
	return roster.Clone(s.records)
}
