// Package memstore provides an in-memory trace store for tests and
// simulations.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store is an in-memory trace store.
type Store struct {
	mu     sync.RWMutex
	traces map[string][]trace.Frame
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		traces: make(map[string][]trace.Frame),
	}
}

// ReadTrace returns a copy of the named trace.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]trace.Frame, error) {
	if err := tracestore.CheckContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	frames, ok := s.traces[name]
	if !ok {
		return nil, tracestore.ErrNotFound
	}
	return trace.Clone(frames), nil
}

// WriteTrace stores a copy of frames.
func (s *Store) WriteTrace(ctx context.Context, name string, frames []trace.Frame) error {
	if err := tracestore.CheckContext(ctx); err != nil {
		return err
	}
	if err := tracestore.ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[name] = trace.Clone(frames)
	return nil
}

// List returns the stored trace names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := tracestore.CheckContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.traces)), nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
