package core

import (
	"time"
)

// Status is the derived traffic-light severity of an accountability record.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusOrange Status = "ORANGE"
	StatusRed    Status = "RED"
)

// EntryType tags a ledger entry.
type EntryType string

const (
	EntryInitial   EntryType = "initial"
	EntryExtension EntryType = "extension"
)

// Accountability setting bounds and defaults
const (
	DefaultMaxStrikes = 3
	MinMaxStrikes     = 2
	MaxMaxStrikes     = 5

	DefaultGraceHours = 24
	MinGraceHours     = 12
	MaxGraceHours     = 72
)

// Config holds engine settings.
type Config struct {
	// MaxStrikes is the extension budget before a record turns RED (2-5).
	MaxStrikes int

	// GraceHours is the configured grace buffer after an ETA lapses (12-72).
	// It is surfaced to clients for display; it does not change strike or
	// lock behavior.
	GraceHours int
}

// HistoryEntry is one immutable entry in a record's ETA ledger.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Type         EntryType `json:"type"` // initial, extension
	Eta          time.Time `json:"eta"`
	SetAt        time.Time `json:"setAt"`
	Reason       string    `json:"reason,omitempty"`
	StrikeNumber int       `json:"strikeNumber,omitempty"` // 0 for the initial entry
}

// Record is the persisted accountability state for one task. Derived fields
// (status, lock, capability flags) are computed on read, never stored.
type Record struct {
	TaskID string `json:"taskId"`
	ListID string `json:"listId"`
	UserID string `json:"userId"`

	// OriginalEta is immutable after the first set; CurrentEta moves on
	// every successful extension.
	OriginalEta time.Time `json:"originalEta"`
	CurrentEta  time.Time `json:"currentEta"`

	// DueDate is the hard ceiling no ETA may exceed. Nil when the task has
	// no due date.
	DueDate *time.Time `json:"dueDate,omitempty"`

	StrikeCount int `json:"strikeCount"`
	MaxStrikes  int `json:"maxStrikes"`

	// CompletedAt closes the record. Once set, no further writes succeed.
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	History Ledger `json:"history"`

	// Version implements the per-task optimistic concurrency check.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Completed reports whether the record is closed.
func (r *Record) Completed() bool {
	return r.CompletedAt != nil
}

// State returns the state-machine state this record is in.
func (r *Record) State() State {
	if r == nil {
		return StateNotSet
	}
	if r.Completed() {
		return StateCompleted
	}
	return StateActive
}

// Status returns the derived traffic-light status.
func (r *Record) Status() Status {
	return ComputeStatus(r.StrikeCount, r.MaxStrikes)
}

// Locked reports whether the current ETA is committed: set, still in the
// future, and the task not completed.
func (r *Record) Locked(now time.Time) bool {
	return !r.Completed() && r.CurrentEta.After(now)
}

// Overdue reports whether the current ETA has lapsed without completion.
func (r *Record) Overdue(now time.Time) bool {
	return !r.Completed() && !r.CurrentEta.After(now)
}

// CanExtend reports whether another extension is permitted.
func (r *Record) CanExtend() bool {
	return CanTransition(r.State(), r.StrikeCount, r.MaxStrikes, ActionExtendEta)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	if r.DueDate != nil {
		d := *r.DueDate
		cp.DueDate = &d
	}
	if r.CompletedAt != nil {
		c := *r.CompletedAt
		cp.CompletedAt = &c
	}
	cp.History = make(Ledger, len(r.History))
	copy(cp.History, r.History)
	return &cp
}

// SetEtaRequest carries the parameters of a first-time ETA commitment.
type SetEtaRequest struct {
	TaskID  string
	ListID  string
	UserID  string
	Eta     time.Time
	DueDate *time.Time
	Reason  string // optional on the first set
}

// ExtendEtaRequest carries the parameters of an ETA extension.
type ExtendEtaRequest struct {
	TaskID  string
	UserID  string
	NewEta  time.Time
	DueDate *time.Time
	Reason  string // required, see ValidateReason
}
