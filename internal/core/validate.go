package core

import (
	"strings"
	"time"
)

// minReasonLength is the minimum trimmed length of an extension reason.
const minReasonLength = 3

// ValidateNewEta checks a proposed ETA against the current time and the task
// due date. The ETA must be strictly in the future; the due date, when
// present, is an inclusive upper bound. Pure, no side effects.
func ValidateNewEta(candidate time.Time, dueDate *time.Time, now time.Time) error {
	if !candidate.After(now) {
		return ErrPastEta
	}
	if dueDate != nil && candidate.After(*dueDate) {
		return ErrExceedsDueDate
	}
	return nil
}

// ValidateReason checks an ETA change reason. Extensions require a reason of
// at least minReasonLength characters after trimming; first-time sets accept
// anything, including empty.
func ValidateReason(reason string, required bool) error {
	if !required {
		return nil
	}
	if len(strings.TrimSpace(reason)) < minReasonLength {
		return ErrReasonTooShort
	}
	return nil
}
