package web

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// isoMillis is the wire format for outgoing timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// apiTime crosses the API boundary as either an ISO-8601 string or an
// epoch-millisecond number on input, always ISO-8601 in responses.
type apiTime struct {
	time.Time
}

func (t apiTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(isoMillis))
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed.UTC()
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (t *apiTime) timePtr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	tt := t.Time
	return &tt
}

func apiTimePtr(t *time.Time) *apiTime {
	if t == nil {
		return nil
	}
	return &apiTime{*t}
}

// HistoryEntryView is the wire shape of one ledger entry.
type HistoryEntryView struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Eta          apiTime  `json:"eta"`
	SetAt        apiTime  `json:"setAt"`
	Reason       string   `json:"reason,omitempty"`
	StrikeNumber int      `json:"strikeNumber,omitempty"`
}

// AccountabilityView is the wire shape of a record plus its derived fields.
type AccountabilityView struct {
	TaskID      string             `json:"taskId"`
	ListID      string             `json:"listId"`
	UserID      string             `json:"userId"`
	OriginalEta apiTime            `json:"originalEta"`
	CurrentEta  apiTime            `json:"currentEta"`
	DueDate     *apiTime           `json:"dueDate,omitempty"`
	EtaHistory  []HistoryEntryView `json:"etaHistory"`
	StrikeCount int                `json:"strikeCount"`
	MaxStrikes  int                `json:"maxStrikes"`
	Status      core.Status        `json:"status"`
	IsLocked    bool               `json:"isLocked"`
	CanSetEta   bool               `json:"canSetEta"`
	CanExtend   bool               `json:"canExtend"`
	Overdue     bool               `json:"overdue"`
	GraceEndsAt *apiTime           `json:"graceEndsAt,omitempty"`
	CompletedAt *apiTime           `json:"completedAt,omitempty"`
}

// viewFromRecord derives the client-facing fields at read time.
// graceEndsAt is display-only: it marks the end of the configured grace
// buffer after an overdue ETA and has no effect on strikes or locking.
func viewFromRecord(rec *core.Record, now time.Time, graceHours int) *AccountabilityView {
	history := make([]HistoryEntryView, len(rec.History))
	for i, e := range rec.History {
		history[i] = HistoryEntryView{
			ID:           e.ID,
			Type:         string(e.Type),
			Eta:          apiTime{e.Eta},
			SetAt:        apiTime{e.SetAt},
			Reason:       e.Reason,
			StrikeNumber: e.StrikeNumber,
		}
	}

	view := &AccountabilityView{
		TaskID:      rec.TaskID,
		ListID:      rec.ListID,
		UserID:      rec.UserID,
		OriginalEta: apiTime{rec.OriginalEta},
		CurrentEta:  apiTime{rec.CurrentEta},
		DueDate:     apiTimePtr(rec.DueDate),
		EtaHistory:  history,
		StrikeCount: rec.StrikeCount,
		MaxStrikes:  rec.MaxStrikes,
		Status:      rec.Status(),
		IsLocked:    rec.Locked(now),
		CanSetEta:   rec.State() == core.StateNotSet,
		CanExtend:   rec.CanExtend(),
		Overdue:     rec.Overdue(now),
		CompletedAt: apiTimePtr(rec.CompletedAt),
	}
	if view.Overdue && graceHours > 0 {
		grace := rec.CurrentEta.Add(time.Duration(graceHours) * time.Hour)
		view.GraceEndsAt = &apiTime{grace}
	}
	return view
}
