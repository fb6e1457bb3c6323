package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine orchestrates validation, the state machine, and the strike ledger
// against persisted records. It holds no per-task state of its own; the
// repository's version check serializes concurrent mutations of one task.
type Engine struct {
	config Config
	repo   Repository
	clock  Clock
	ids    IDGenerator
}

// EngineDeps holds dependencies for constructing an Engine.
type EngineDeps struct {
	Config Config
	Repo   Repository
	Clock  Clock
	IDs    IDGenerator
}

// NewEngine creates an engine over the given repository with system clock
// and UUID IDs. Out-of-range settings fall back to defaults.
func NewEngine(config Config, repo Repository) *Engine {
	if config.MaxStrikes < MinMaxStrikes || config.MaxStrikes > MaxMaxStrikes {
		config.MaxStrikes = DefaultMaxStrikes
	}
	if config.GraceHours < MinGraceHours || config.GraceHours > MaxGraceHours {
		config.GraceHours = DefaultGraceHours
	}
	return &Engine{
		config: config,
		repo:   repo,
		clock:  NewSystemClock(),
		ids:    NewIDGenerator(),
	}
}

// NewEngineWithDeps creates an engine with explicit dependencies (for testing).
func NewEngineWithDeps(deps EngineDeps) *Engine {
	e := NewEngine(deps.Config, deps.Repo)
	if deps.Clock != nil {
		e.clock = deps.Clock
	}
	if deps.IDs != nil {
		e.ids = deps.IDs
	}
	return e
}

// Config returns the engine's effective settings.
func (e *Engine) Config() Config { return e.config }

// SetEta creates the accountability record for a task on its first ETA
// commitment. Fails ErrAlreadySet when an open record exists and
// ErrAlreadyCompleted when the task's record is closed.
func (e *Engine) SetEta(ctx context.Context, req SetEtaRequest) (*Record, error) {
	now := canonical(e.clock.Now())
	eta := canonical(req.Eta)
	due := canonicalPtr(req.DueDate)

	existing, err := e.repo.Get(ctx, req.TaskID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load record for %s: %w", req.TaskID, err)
	}
	if existing != nil {
		if existing.Completed() {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrAlreadySet
	}

	if err := ValidateReason(req.Reason, false); err != nil {
		return nil, err
	}
	if err := ValidateNewEta(eta, due, now); err != nil {
		return nil, err
	}

	rec := &Record{
		TaskID:      req.TaskID,
		ListID:      req.ListID,
		UserID:      req.UserID,
		OriginalEta: eta,
		CurrentEta:  eta,
		DueDate:     due,
		StrikeCount: 0,
		MaxStrikes:  e.config.MaxStrikes,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		History: Ledger{{
			ID:     e.ids.GenerateID(),
			Type:   EntryInitial,
			Eta:    eta,
			SetAt:  now,
			Reason: strings.TrimSpace(req.Reason),
		}},
	}

	if err := e.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExtendEta moves the current ETA forward and applies exactly one strike.
// This is the only path by which the strike count changes; there is no
// background job that applies strikes when an ETA silently lapses.
func (e *Engine) ExtendEta(ctx context.Context, req ExtendEtaRequest) (*Record, error) {
	now := canonical(e.clock.Now())
	newEta := canonical(req.NewEta)
	due := canonicalPtr(req.DueDate)

	rec, err := e.repo.Get(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if rec.Completed() {
		return nil, ErrAlreadyCompleted
	}
	if !CanTransition(rec.State(), rec.StrikeCount, rec.MaxStrikes, ActionExtendEta) {
		return nil, ErrMaxStrikesReached
	}
	if due == nil {
		due = rec.DueDate
	}

	if err := ValidateReason(req.Reason, true); err != nil {
		return nil, err
	}
	if err := ValidateNewEta(newEta, due, now); err != nil {
		return nil, err
	}

	strike := rec.StrikeCount + 1
	entry := HistoryEntry{
		ID:           e.ids.GenerateID(),
		Type:         EntryExtension,
		Eta:          newEta,
		SetAt:        now,
		Reason:       strings.TrimSpace(req.Reason),
		StrikeNumber: strike,
	}

	rec.CurrentEta = newEta
	rec.DueDate = due
	rec.StrikeCount = strike
	rec.UpdatedAt = now
	rec.History = rec.History.Append(entry)

	if err := e.repo.Update(ctx, rec, &entry); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkComplete closes the record. The first call wins; any later mutating
// call fails ErrAlreadyCompleted with the original CompletedAt untouched.
func (e *Engine) MarkComplete(ctx context.Context, taskID, userID string) (*Record, error) {
	now := canonical(e.clock.Now())

	rec, err := e.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if rec.Completed() {
		return nil, ErrAlreadyCompleted
	}

	rec.CompletedAt = &now
	rec.UpdatedAt = now

	if err := e.repo.Update(ctx, rec, nil); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the accountability record for a task. Read-only; safe to call
// concurrently and repeatedly. Returns ErrNotFound when no record exists.
func (e *Engine) Get(ctx context.Context, taskID string) (*Record, error) {
	return e.repo.Get(ctx, taskID)
}

// Now exposes the engine clock so transports derive display fields from the
// same time source.
func (e *Engine) Now() time.Time { return canonical(e.clock.Now()) }

// canonical truncates to millisecond precision in UTC; all timestamps cross
// the engine boundary as epoch milliseconds.
func canonical(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

func canonicalPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := canonical(*t)
	return &c
}
