package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// PgStore is a PostgreSQL-backed accountability repository for deployments
// running more than one engine instance. Same contract and column layout as
// the SQLite store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects to Postgres and ensures the schema exists.
func NewPgStore(ctx context.Context, url string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PgStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accountability (
			task_id      TEXT PRIMARY KEY,
			list_id      TEXT NOT NULL,
			user_id      TEXT NOT NULL,
			original_eta BIGINT NOT NULL,
			current_eta  BIGINT NOT NULL,
			due_date     BIGINT,
			strike_count INTEGER NOT NULL DEFAULT 0,
			max_strikes  INTEGER NOT NULL,
			completed_at BIGINT,
			version      BIGINT NOT NULL,
			created_at   BIGINT NOT NULL,
			updated_at   BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure accountability table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS eta_history (
			id            TEXT PRIMARY KEY,
			task_id       TEXT NOT NULL REFERENCES accountability(task_id),
			position      INTEGER NOT NULL,
			type          TEXT NOT NULL,
			eta           BIGINT NOT NULL,
			set_at        BIGINT NOT NULL,
			reason        TEXT,
			strike_number INTEGER NOT NULL DEFAULT 0,
			UNIQUE (task_id, position)
		)`)
	if err != nil {
		return fmt.Errorf("ensure eta_history table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_history_task ON eta_history(task_id)`)
	return err
}

// Close releases the connection pool.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}

// Get loads a record with its ledger in commit order.
func (s *PgStore) Get(ctx context.Context, taskID string) (*core.Record, error) {
	var rec core.Record
	var originalEta, currentEta, createdAt, updatedAt int64
	var dueDate, completedAt *int64

	err := s.pool.QueryRow(ctx, `
		SELECT task_id, list_id, user_id, original_eta, current_eta, due_date,
		       strike_count, max_strikes, completed_at, version, created_at, updated_at
		FROM accountability WHERE task_id = $1`, taskID).
		Scan(&rec.TaskID, &rec.ListID, &rec.UserID, &originalEta, &currentEta,
			&dueDate, &rec.StrikeCount, &rec.MaxStrikes, &completedAt, &rec.Version,
			&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("load record %s: %w", taskID, err)
	}

	rec.OriginalEta = timeFromMillis(originalEta)
	rec.CurrentEta = timeFromMillis(currentEta)
	rec.CreatedAt = timeFromMillis(createdAt)
	rec.UpdatedAt = timeFromMillis(updatedAt)
	if dueDate != nil {
		t := timeFromMillis(*dueDate)
		rec.DueDate = &t
	}
	if completedAt != nil {
		t := timeFromMillis(*completedAt)
		rec.CompletedAt = &t
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, type, eta, set_at, reason, strike_number
		FROM eta_history WHERE task_id = $1 ORDER BY position ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", taskID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry core.HistoryEntry
		var eta, setAt int64
		var reason *string
		if err := rows.Scan(&entry.ID, &entry.Type, &eta, &setAt, &reason, &entry.StrikeNumber); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Eta = timeFromMillis(eta)
		entry.SetAt = timeFromMillis(setAt)
		if reason != nil {
			entry.Reason = *reason
		}
		rec.History = append(rec.History, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history iteration: %w", err)
	}

	return &rec, nil
}

// Create inserts a new record with its initial ledger entries atomically.
func (s *PgStore) Create(ctx context.Context, rec *core.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO accountability
			(task_id, list_id, user_id, original_eta, current_eta, due_date,
			 strike_count, max_strikes, completed_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (task_id) DO NOTHING`,
		rec.TaskID, rec.ListID, rec.UserID, millis(rec.OriginalEta), millis(rec.CurrentEta),
		millisPtr(rec.DueDate), rec.StrikeCount, rec.MaxStrikes, millisPtr(rec.CompletedAt),
		rec.Version, millis(rec.CreatedAt), millis(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create record %s: %w", rec.TaskID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAlreadySet
	}

	for i, entry := range rec.History {
		if _, err := tx.Exec(ctx, `
			INSERT INTO eta_history (id, task_id, position, type, eta, set_at, reason, strike_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ID, rec.TaskID, i, string(entry.Type), millis(entry.Eta),
			millis(entry.SetAt), entry.Reason, entry.StrikeNumber); err != nil {
			return fmt.Errorf("append history entry %s: %w", entry.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Update persists the mutated record and appends entry (nil for completion)
// in one transaction, guarded by the version predicate.
func (s *PgStore) Update(ctx context.Context, rec *core.Record, entry *core.HistoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE accountability
		SET current_eta = $1, due_date = $2, strike_count = $3, completed_at = $4,
		    updated_at = $5, version = version + 1
		WHERE task_id = $6 AND version = $7`,
		millis(rec.CurrentEta), millisPtr(rec.DueDate), rec.StrikeCount,
		millisPtr(rec.CompletedAt), millis(rec.UpdatedAt), rec.TaskID, rec.Version)
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.TaskID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrConcurrentModification
	}

	if entry != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO eta_history (id, task_id, position, type, eta, set_at, reason, strike_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ID, rec.TaskID, len(rec.History)-1, string(entry.Type), millis(entry.Eta),
			millis(entry.SetAt), entry.Reason, entry.StrikeNumber); err != nil {
			return fmt.Errorf("append history entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update %s: %w", rec.TaskID, err)
	}
	rec.Version++
	return nil
}

// Counts reports open and completed record totals.
func (s *PgStore) Counts(ctx context.Context) (open, completed int, err error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE completed_at IS NULL),
		       COUNT(*) FILTER (WHERE completed_at IS NOT NULL)
		FROM accountability`)
	if err := row.Scan(&open, &completed); err != nil {
		return 0, 0, fmt.Errorf("count records: %w", err)
	}
	return open, completed, nil
}
