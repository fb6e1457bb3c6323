package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ifaizanrathore/workora-eta-engine/internal/config"
	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
	"github.com/ifaizanrathore/workora-eta-engine/internal/storage"
)

// backend is a repository with a lifecycle.
type backend interface {
	core.Repository
	Close() error
}

// openEngine builds an engine over the configured storage backend.
// The returned close func releases the backend.
func openEngine(ctx context.Context) (*core.Engine, *config.Config, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	engine := core.NewEngine(cfg.EngineConfig(), repo)
	return engine, cfg, repo.Close, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := storage.NewStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := storage.NewPgStore(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// parseTimestamp accepts ISO-8601 or epoch milliseconds, matching the API.
func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (want RFC3339 or epoch milliseconds)", s)
	}
	return t.UTC(), nil
}

func parseTimestampPtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
