package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/graderight/grader/pkg/logging"
)

// Config defines retention policy for terminal job statuses.
type Config struct {
	Enabled       bool
	RetentionDays int
	Interval      time.Duration
}

// DefaultConfig returns sensible defaults for cleanup
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RetentionDays: 7,
		Interval:      24 * time.Hour,
	}
}

// Store is the purge dependency; satisfied by store.Store.
type Store interface {
	PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error)
}

// Manager periodically purges old completed and failed job statuses so the
// status store does not grow without bound.
type Manager struct {
	config Config
	store  Store
	log    *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

// Stats tracks cleanup operations
type Stats struct {
	LastRunTime     time.Time
	TotalPurged     int64
	LastRunDuration time.Duration
}

// NewManager creates a cleanup manager over a status store.
func NewManager(config Config, s Store, log *logging.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		config: config,
		store:  s,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the periodic purge loop.
func (m *Manager) Start() {
	if !m.config.Enabled || m.store == nil {
		m.log.Info("Status cleanup disabled")
		return
	}

	m.log.Info("Starting status cleanup", map[string]interface{}{
		"retention_days": m.config.RetentionDays,
		"interval":       m.config.Interval.String(),
	})

	m.wg.Add(1)
	go m.loop()
}

// Stop gracefully stops the purge loop.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

// GetStats returns a snapshot of cleanup statistics.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *Manager) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.runOnce()
		}
	}
}

func (m *Manager) runOnce() {
	start := time.Now()
	retention := time.Duration(m.config.RetentionDays) * 24 * time.Hour

	purged, err := m.store.PurgeTerminal(m.ctx, retention)
	if err != nil {
		m.log.Warn("Status purge failed", map[string]interface{}{"error": err.Error()})
		return
	}

	m.mu.Lock()
	m.stats.LastRunTime = start
	m.stats.LastRunDuration = time.Since(start)
	m.stats.TotalPurged += int64(purged)
	m.mu.Unlock()

	if purged > 0 {
		m.log.Info("Purged terminal job statuses", map[string]interface{}{
			"purged":   purged,
			"duration": time.Since(start).String(),
		})
	}
}
