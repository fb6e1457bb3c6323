package storage

import (
	"context"
	"sync"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// MemStore is an in-memory accountability repository for tests and
// ephemeral runs. It enforces the same version semantics as the durable
// stores.
type MemStore struct {
	mu      sync.Mutex
	records map[string]*core.Record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]*core.Record)}
}

func (s *MemStore) Get(ctx context.Context, taskID string) (*core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[taskID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemStore) Create(ctx context.Context, rec *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.TaskID]; ok {
		return core.ErrAlreadySet
	}
	s.records[rec.TaskID] = rec.Clone()
	return nil
}

func (s *MemStore) Update(ctx context.Context, rec *core.Record, entry *core.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.TaskID]
	if !ok {
		return core.ErrNotFound
	}
	if stored.Version != rec.Version {
		return core.ErrConcurrentModification
	}
	rec.Version++
	s.records[rec.TaskID] = rec.Clone()
	return nil
}

// Counts reports open and completed record totals.
func (s *MemStore) Counts(ctx context.Context) (open, completed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Completed() {
			completed++
		} else {
			open++
		}
	}
	return open, completed, nil
}

// Close is a no-op; it satisfies the backend contract.
func (s *MemStore) Close() error { return nil }
