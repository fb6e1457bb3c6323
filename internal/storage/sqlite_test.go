package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "accountability.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(taskID string) *core.Record {
	due := testNow.Add(10 * 24 * time.Hour)
	eta := testNow.Add(48 * time.Hour)
	return &core.Record{
		TaskID:      taskID,
		ListID:      "list-1",
		UserID:      "user-1",
		OriginalEta: eta,
		CurrentEta:  eta,
		DueDate:     &due,
		StrikeCount: 0,
		MaxStrikes:  3,
		Version:     1,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
		History: core.Ledger{{
			ID:    newEntryID(),
			Type:  core.EntryInitial,
			Eta:   eta,
			SetAt: testNow,
		}},
	}
}

func TestStore_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := testRecord("task-1")

	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.OriginalEta.Equal(rec.OriginalEta) || !got.CurrentEta.Equal(rec.CurrentEta) {
		t.Errorf("eta mismatch: %v / %v", got.OriginalEta, got.CurrentEta)
	}
	if got.DueDate == nil || !got.DueDate.Equal(*rec.DueDate) {
		t.Errorf("due date mismatch: %v", got.DueDate)
	}
	if got.Version != 1 || got.StrikeCount != 0 {
		t.Errorf("unexpected version/strikes: %d/%d", got.Version, got.StrikeCount)
	}
	if len(got.History) != 1 || got.History[0].Type != core.EntryInitial {
		t.Errorf("unexpected history: %+v", got.History)
	}
	if got.CompletedAt != nil {
		t.Errorf("expected open record, got completedAt %v", got.CompletedAt)
	}
}

func TestStore_GetMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DuplicateCreateFailsAlreadySet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Create(ctx, testRecord("task-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := store.Create(ctx, testRecord("task-1"))
	if !errors.Is(err, core.ErrAlreadySet) {
		t.Fatalf("expected ErrAlreadySet, got %v", err)
	}
}

func TestStore_UpdateAppendsLedgerInCommitOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := testRecord("task-1")
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for n := 1; n <= 2; n++ {
		newEta := rec.CurrentEta.Add(24 * time.Hour)
		entry := core.HistoryEntry{
			ID:           newEntryID(),
			Type:         core.EntryExtension,
			Eta:          newEta,
			SetAt:        testNow.Add(time.Duration(n) * time.Hour),
			Reason:       "waiting on review",
			StrikeNumber: n,
		}
		rec.CurrentEta = newEta
		rec.StrikeCount = n
		rec.UpdatedAt = entry.SetAt
		rec.History = rec.History.Append(entry)

		if err := store.Update(ctx, rec, &entry); err != nil {
			t.Fatalf("Update %d failed: %v", n, err)
		}
	}

	got, err := store.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Version != 3 {
		t.Errorf("expected version 3 after two updates, got %d", got.Version)
	}
	if got.StrikeCount != 2 || len(got.History) != 3 {
		t.Errorf("expected 2 strikes and 3 entries, got %d/%d", got.StrikeCount, len(got.History))
	}
	for i, entry := range got.History {
		wantType := core.EntryExtension
		if i == 0 {
			wantType = core.EntryInitial
		}
		if entry.Type != wantType {
			t.Errorf("entry %d: expected type %s, got %s", i, wantType, entry.Type)
		}
		if entry.StrikeNumber != i {
			t.Errorf("entry %d: expected strikeNumber %d, got %d", i, i, entry.StrikeNumber)
		}
	}
}

func TestStore_StaleVersionFailsConcurrentModification(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := testRecord("task-1")
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := rec.Clone()

	entry := core.HistoryEntry{
		ID: newEntryID(), Type: core.EntryExtension,
		Eta: testNow.Add(72 * time.Hour), SetAt: testNow, StrikeNumber: 1,
	}
	rec.StrikeCount = 1
	rec.History = rec.History.Append(entry)
	if err := store.Update(ctx, rec, &entry); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	staleEntry := core.HistoryEntry{
		ID: newEntryID(), Type: core.EntryExtension,
		Eta: testNow.Add(96 * time.Hour), SetAt: testNow, StrikeNumber: 1,
	}
	stale.StrikeCount = 1
	stale.History = stale.History.Append(staleEntry)
	err := store.Update(ctx, stale, &staleEntry)
	if !errors.Is(err, core.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	got, err := store.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.History) != 2 {
		t.Errorf("lost update still appended: %d entries", len(got.History))
	}
}

func TestStore_CompletionPersists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := testRecord("task-1")
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	done := testNow.Add(36 * time.Hour)
	rec.CompletedAt = &done
	rec.UpdatedAt = done
	if err := store.Update(ctx, rec, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("expected completedAt %v, got %v", done, got.CompletedAt)
	}
	if len(got.History) != 1 {
		t.Errorf("completion must not append to the ledger, got %d entries", len(got.History))
	}

	open, completed, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if open != 0 || completed != 1 {
		t.Errorf("expected 0 open / 1 completed, got %d / %d", open, completed)
	}
}
