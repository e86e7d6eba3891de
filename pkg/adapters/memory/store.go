// Package memory provides an in-memory ConfigStore, useful for tests and
// for embedding the wizard without touching disk.
package memory

import (
	"context"
	"sync"
)

// Store implements ports.ConfigStore in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	committed map[string]any
	staged    map[string]any
	writeErr  error
}

// Option configures the store.
type Option func(*Store)

// WithInitial seeds the committed document, as if a previous session had
// written it.
func WithInitial(doc map[string]any) Option {
	return func(s *Store) {
		for k, v := range doc {
			s.committed[k] = v
		}
	}
}

// WithWriteError makes every Write fail with err. Useful for exercising
// write-failure handling.
func WithWriteError(err error) Option {
	return func(s *Store) {
		s.writeErr = err
	}
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		committed: make(map[string]any),
		staged:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load is a no-op: the committed document is already in memory.
func (s *Store) Load(ctx context.Context) error {
	return nil
}

// Get returns the value for key, staged values first.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.staged[key]; ok {
		return v, true
	}
	v, ok := s.committed[key]
	return v, ok
}

// Add stages a value for the next Write.
func (s *Store) Add(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[key] = value
}

// Write folds all staged values into the committed document atomically.
// Staged values survive a failed write so a retry can flush them.
func (s *Store) Write(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	for k, v := range s.staged {
		s.committed[k] = v
	}
	s.staged = make(map[string]any)
	return nil
}

// Document returns a copy of the committed document.
func (s *Store) Document() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := make(map[string]any, len(s.committed))
	for k, v := range s.committed {
		doc[k] = v
	}
	return doc
}
