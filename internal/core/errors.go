package core

import "errors"

// Typed failures returned by the engine. Callers distinguish them with
// errors.Is; the transport layer maps each to a status code and error code.
var (
	// ErrPastEta - candidate ETA is not strictly in the future.
	ErrPastEta = errors.New("eta must be in the future")

	// ErrExceedsDueDate - candidate ETA is later than the task due date.
	ErrExceedsDueDate = errors.New("eta exceeds the task due date")

	// ErrReasonTooShort - extension requested without a descriptive reason.
	ErrReasonTooShort = errors.New("extension reason too short")

	// ErrAlreadySet - setEta called on a task with an open record.
	ErrAlreadySet = errors.New("eta already set for this task")

	// ErrMaxStrikesReached - extension budget exhausted; task must be completed.
	ErrMaxStrikesReached = errors.New("maximum strikes reached")

	// ErrAlreadyCompleted - mutating call on a closed record.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrConcurrentModification - lost the per-task serialization race.
	ErrConcurrentModification = errors.New("record was modified concurrently")

	// ErrNotFound - no accountability record exists for the task.
	ErrNotFound = errors.New("no accountability record for task")
)
