package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// Store is the SQLite-backed accountability repository. All timestamps
// persist as epoch milliseconds; the version column carries the per-task
// optimistic concurrency check.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the accountability database.
func NewStore(dbPath string) (*Store, error) {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// migrate creates the necessary tables
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS accountability (
			task_id      TEXT PRIMARY KEY,
			list_id      TEXT NOT NULL,
			user_id      TEXT NOT NULL,
			original_eta INTEGER NOT NULL,
			current_eta  INTEGER NOT NULL,
			due_date     INTEGER,
			strike_count INTEGER NOT NULL DEFAULT 0,
			max_strikes  INTEGER NOT NULL,
			completed_at INTEGER,
			version      INTEGER NOT NULL,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS eta_history (
			id            TEXT PRIMARY KEY,
			task_id       TEXT NOT NULL,
			position      INTEGER NOT NULL,
			type          TEXT NOT NULL,
			eta           INTEGER NOT NULL,
			set_at        INTEGER NOT NULL,
			reason        TEXT,
			strike_number INTEGER NOT NULL DEFAULT 0,
			UNIQUE (task_id, position),
			FOREIGN KEY (task_id) REFERENCES accountability(task_id)
		);

		CREATE INDEX IF NOT EXISTS idx_history_task ON eta_history(task_id);
		CREATE INDEX IF NOT EXISTS idx_accountability_user ON accountability(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle for sharing the database file.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get loads a record with its ledger in commit order.
func (s *Store) Get(ctx context.Context, taskID string) (*core.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT task_id, list_id, user_id, original_eta, current_eta, due_date,
		       strike_count, max_strikes, completed_at, version, created_at, updated_at
		FROM accountability WHERE task_id = ?
	`, taskID)

	var rec core.Record
	var originalEta, currentEta, createdAt, updatedAt int64
	var dueDate, completedAt sql.NullInt64

	err := row.Scan(&rec.TaskID, &rec.ListID, &rec.UserID, &originalEta, &currentEta,
		&dueDate, &rec.StrikeCount, &rec.MaxStrikes, &completedAt, &rec.Version,
		&createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("load record %s: %w", taskID, err)
	}

	rec.OriginalEta = timeFromMillis(originalEta)
	rec.CurrentEta = timeFromMillis(currentEta)
	rec.CreatedAt = timeFromMillis(createdAt)
	rec.UpdatedAt = timeFromMillis(updatedAt)
	rec.DueDate = timePtrFromNull(dueDate)
	rec.CompletedAt = timePtrFromNull(completedAt)

	history, err := s.loadHistory(ctx, taskID)
	if err != nil {
		return nil, err
	}
	rec.History = history

	return &rec, nil
}

func (s *Store) loadHistory(ctx context.Context, taskID string) (core.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, eta, set_at, reason, strike_number
		FROM eta_history
		WHERE task_id = ?
		ORDER BY position ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", taskID, err)
	}
	defer rows.Close()

	var history core.Ledger
	for rows.Next() {
		var entry core.HistoryEntry
		var eta, setAt int64
		var reason sql.NullString

		if err := rows.Scan(&entry.ID, &entry.Type, &eta, &setAt, &reason, &entry.StrikeNumber); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Eta = timeFromMillis(eta)
		entry.SetAt = timeFromMillis(setAt)
		if reason.Valid {
			entry.Reason = reason.String
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history iteration: %w", err)
	}

	return history, nil
}

// Create inserts a new record with its initial ledger entries atomically.
func (s *Store) Create(ctx context.Context, rec *core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR IGNORE keeps the conflict check race-free without error
	// string inspection: zero rows affected means the task already has a
	// record.
	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO accountability
			(task_id, list_id, user_id, original_eta, current_eta, due_date,
			 strike_count, max_strikes, completed_at, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.TaskID, rec.ListID, rec.UserID, millis(rec.OriginalEta), millis(rec.CurrentEta),
		millisPtr(rec.DueDate), rec.StrikeCount, rec.MaxStrikes, millisPtr(rec.CompletedAt),
		rec.Version, millis(rec.CreatedAt), millis(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create record %s: %w", rec.TaskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrAlreadySet
	}

	for i, entry := range rec.History {
		if err := insertEntry(ctx, tx, rec.TaskID, i, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Update persists the mutated record and appends entry (nil for completion)
// in one transaction, guarded by the version predicate.
func (s *Store) Update(ctx context.Context, rec *core.Record, entry *core.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE accountability
		SET current_eta = ?, due_date = ?, strike_count = ?, completed_at = ?,
		    updated_at = ?, version = version + 1
		WHERE task_id = ? AND version = ?
	`, millis(rec.CurrentEta), millisPtr(rec.DueDate), rec.StrikeCount,
		millisPtr(rec.CompletedAt), millis(rec.UpdatedAt), rec.TaskID, rec.Version)
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.TaskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrConcurrentModification
	}

	if entry != nil {
		if err := insertEntry(ctx, tx, rec.TaskID, len(rec.History)-1, *entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %s: %w", rec.TaskID, err)
	}
	rec.Version++
	return nil
}

// Counts reports open and completed record totals.
func (s *Store) Counts(ctx context.Context) (open, completed int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE completed_at IS NULL),
		       COUNT(*) FILTER (WHERE completed_at IS NOT NULL)
		FROM accountability
	`)
	if err := row.Scan(&open, &completed); err != nil {
		return 0, 0, fmt.Errorf("count records: %w", err)
	}
	return open, completed, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, taskID string, position int, entry core.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO eta_history (id, task_id, position, type, eta, set_at, reason, strike_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, taskID, position, string(entry.Type), millis(entry.Eta),
		millis(entry.SetAt), entry.Reason, entry.StrikeNumber)
	if err != nil {
		return fmt.Errorf("append history entry %s: %w", entry.ID, err)
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func millisPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func timeFromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func timePtrFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromMillis(v.Int64)
	return &t
}
