package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSetGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.SetStatus(ctx, "job:grade:s1", "processing"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	got, err := s.GetStatus(ctx, "job:grade:s1")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got != "processing" {
		t.Errorf("Expected 'processing', got %q", got)
	}

	// Upsert replaces the previous value.
	if err := s.SetStatus(ctx, "job:grade:s1", "failed: empty PDF"); err != nil {
		t.Fatalf("SetStatus upsert failed: %v", err)
	}
	got, _ = s.GetStatus(ctx, "job:grade:s1")
	if got != "failed: empty PDF" {
		t.Errorf("Expected 'failed: empty PDF', got %q", got)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetStatus(context.Background(), "job:blueprint:nope")
	if err != ErrStatusNotFound {
		t.Errorf("Expected ErrStatusNotFound, got %v", err)
	}
}

func TestSQLiteStorePurgeTerminal(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.SetStatus(ctx, "job:grade:done", "completed")
	s.SetStatus(ctx, "job:grade:live", "processing")

	removed, err := s.PurgeTerminal(ctx, time.Hour)
	if err != nil {
		t.Fatalf("PurgeTerminal failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed with fresh entries, got %d", removed)
	}

	// Cutoff in the future removes all terminal entries.
	removed, err = s.PurgeTerminal(ctx, -time.Minute)
	if err != nil {
		t.Fatalf("PurgeTerminal failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if _, err := s.GetStatus(ctx, "job:grade:live"); err != nil {
		t.Errorf("Expected processing entry to survive purge: %v", err)
	}
}

func TestSQLiteStoreHealthCheck(t *testing.T) {
	s := newTestSQLiteStore(t)
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
