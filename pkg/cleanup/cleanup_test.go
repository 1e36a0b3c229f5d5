package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/store"
)

func TestRunOncePurgesTerminalStatuses(t *testing.T) {
	memStore := store.NewMemoryStore()
	ctx := context.Background()
	memStore.SetStatus(ctx, "job:grade:old", "completed")
	memStore.SetStatus(ctx, "job:grade:live", "processing")

	log := logging.NewLogger(logging.FATAL, false)
	m := NewManager(Config{Enabled: true, RetentionDays: 0, Interval: time.Hour}, memStore, log)

	m.runOnce()

	if _, err := memStore.GetStatus(ctx, "job:grade:old"); err != store.ErrStatusNotFound {
		t.Error("Expected terminal status to be purged")
	}
	if _, err := memStore.GetStatus(ctx, "job:grade:live"); err != nil {
		t.Errorf("Expected processing status to survive: %v", err)
	}

	stats := m.GetStats()
	if stats.TotalPurged != 1 {
		t.Errorf("Expected 1 purged, got %d", stats.TotalPurged)
	}
}

func TestStartDisabled(t *testing.T) {
	log := logging.NewLogger(logging.FATAL, false)
	m := NewManager(Config{Enabled: false}, store.NewMemoryStore(), log)
	m.Start()
	m.Stop()
}
