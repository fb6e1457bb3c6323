package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockRepository implements Repository for testing. It enforces the same
// version semantics as the real stores so races are observable in tests.
type MockRepository struct {
	mu      sync.Mutex
	Records map[string]*Record

	GetFunc    func(ctx context.Context, taskID string) (*Record, error)
	CreateFunc func(ctx context.Context, rec *Record) error
	UpdateFunc func(ctx context.Context, rec *Record, entry *HistoryEntry) error

	GetCalls    int
	CreateCalls int
	UpdateCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{Records: make(map[string]*Record)}
}

func (m *MockRepository) Get(ctx context.Context, taskID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetFunc != nil {
		return m.GetFunc(ctx, taskID)
	}

	rec, ok := m.Records[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *MockRepository) Create(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}

	if _, ok := m.Records[rec.TaskID]; ok {
		return ErrAlreadySet
	}
	m.Records[rec.TaskID] = rec.Clone()
	return nil
}

func (m *MockRepository) Update(ctx context.Context, rec *Record, entry *HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec, entry)
	}

	stored, ok := m.Records[rec.TaskID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != rec.Version {
		return ErrConcurrentModification
	}
	rec.Version++
	m.Records[rec.TaskID] = rec.Clone()
	return nil
}

// Stored returns the committed record for assertions on persisted state.
func (m *MockRepository) Stored(taskID string) *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records[taskID].Clone()
}

// MockClock implements Clock with a controllable time.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// seqIDGenerator yields deterministic IDs: id-1, id-2, ...
type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) GenerateID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
