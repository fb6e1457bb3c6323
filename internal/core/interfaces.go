package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists accountability records.
// Implementations: storage.Store (SQLite), storage.PgStore (Postgres),
// storage.MemStore (in-memory).
type Repository interface {
	// Get loads the record for a task, including its full ledger in commit
	// order. Returns ErrNotFound when no record exists.
	Get(ctx context.Context, taskID string) (*Record, error)

	// Create persists a brand-new record together with its initial ledger
	// entry, atomically. Returns ErrAlreadySet when a record for the task
	// already exists.
	Create(ctx context.Context, rec *Record) error

	// Update persists field changes and appends entry (nil for completion)
	// in one transaction, guarded by rec.Version. Returns
	// ErrConcurrentModification when the stored version differs; on success
	// rec.Version is advanced.
	Update(ctx context.Context, rec *Record, entry *HistoryEntry) error
}

// Clock supplies the current time; isolated so tests control it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() Clock { return systemClock{} }

// IDGenerator generates unique identifiers for ledger entries.
type IDGenerator interface {
	GenerateID() string
}

// defaultIDGenerator uses UUID for ID generation
type defaultIDGenerator struct{}

func (defaultIDGenerator) GenerateID() string {
	return uuid.New().String()
}

// NewIDGenerator creates a default ID generator.
func NewIDGenerator() IDGenerator {
	return defaultIDGenerator{}
}
