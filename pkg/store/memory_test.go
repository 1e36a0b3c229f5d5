package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.SetStatus(ctx, "job:blueprint:a1", "processing"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	got, err := s.GetStatus(ctx, "job:blueprint:a1")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got != "processing" {
		t.Errorf("Expected status 'processing', got %q", got)
	}

	// Overwrite
	if err := s.SetStatus(ctx, "job:blueprint:a1", "completed"); err != nil {
		t.Fatalf("SetStatus overwrite failed: %v", err)
	}
	got, _ = s.GetStatus(ctx, "job:blueprint:a1")
	if got != "completed" {
		t.Errorf("Expected status 'completed', got %q", got)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetStatus(context.Background(), "job:grade:missing")
	if err != ErrStatusNotFound {
		t.Errorf("Expected ErrStatusNotFound, got %v", err)
	}
}

func TestMemoryStorePurgeTerminal(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.SetStatus(ctx, "job:grade:done", "completed")
	s.SetStatus(ctx, "job:grade:bad", "failed: PDF fetch failed")
	s.SetStatus(ctx, "job:grade:live", "processing")

	// Everything was just written, so a 1h cutoff removes nothing.
	removed, err := s.PurgeTerminal(ctx, time.Hour)
	if err != nil {
		t.Fatalf("PurgeTerminal failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed with fresh entries, got %d", removed)
	}

	removed, err = s.PurgeTerminal(ctx, 0)
	if err != nil {
		t.Fatalf("PurgeTerminal failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 terminal entries removed, got %d", removed)
	}

	// Non-terminal entry survives.
	if _, err := s.GetStatus(ctx, "job:grade:live"); err != nil {
		t.Errorf("Expected processing entry to survive purge: %v", err)
	}
	if _, err := s.GetStatus(ctx, "job:grade:done"); err != ErrStatusNotFound {
		t.Errorf("Expected completed entry to be purged")
	}
}

func TestNewStoreFactory(t *testing.T) {
	s, err := NewStore(Config{Type: "memory"})
	if err != nil {
		t.Fatalf("NewStore(memory) failed: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Expected *MemoryStore, got %T", s)
	}
	s.Close()

	if _, err := NewStore(Config{Type: "cassandra"}); err != ErrUnsupportedDatabase {
		t.Errorf("Expected ErrUnsupportedDatabase, got %v", err)
	}
}
