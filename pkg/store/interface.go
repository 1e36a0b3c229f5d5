package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStatusNotFound is returned when no status has been recorded for a key.
	ErrStatusNotFound = errors.New("job status not found")

	// ErrUnsupportedDatabase is returned by NewStore for unknown backend types.
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Store records job status transitions in a shared, process-external store.
// It is observability telemetry, never a source of truth: callers must not
// gate pipeline correctness on its availability.
type Store interface {
	// SetStatus writes the status token for a job key, overwriting any
	// previous value.
	SetStatus(ctx context.Context, key, value string) error

	// GetStatus returns the status token for a job key, or ErrStatusNotFound.
	GetStatus(ctx context.Context, key string) (string, error)

	// PurgeTerminal deletes terminal (completed/failed) entries older than
	// the given age, returning the number removed.
	PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error)

	// Lifecycle
	HealthCheck(ctx context.Context) error
	Close() error
}

// Config holds job store configuration.
type Config struct {
	Type string // "memory", "sqlite" or "postgres"
	DSN  string // Connection string (postgres)
	Path string // Database file path (sqlite)

	// PostgreSQL pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewStore creates a job store based on configuration.
func NewStore(config Config) (Store, error) {
	switch config.Type {
	case "postgres", "postgresql":
		return NewPostgresStore(config)
	case "sqlite":
		path := config.Path
		if path == "" {
			path = config.DSN
		}
		if path == "" {
			path = "grader.db"
		}
		return NewSQLiteStore(path)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, ErrUnsupportedDatabase
	}
}
