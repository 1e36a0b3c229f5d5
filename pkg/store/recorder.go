package store

import (
	"context"
	"time"

	"github.com/graderight/grader/pkg/logging"
)

// StatusRecorder wraps a Store with best-effort semantics. A nil or failing
// store degrades to log-only operation so that status bookkeeping can never
// interfere with a running grading job.
type StatusRecorder struct {
	store Store
	log   *logging.Logger
}

// NewStatusRecorder creates a recorder over the given store. The store may
// be nil, in which case every write is a logged no-op.
func NewStatusRecorder(s Store, log *logging.Logger) *StatusRecorder {
	return &StatusRecorder{store: s, log: log}
}

// TrySet records a status transition. Failures are logged and swallowed.
func (r *StatusRecorder) TrySet(ctx context.Context, key, value string) {
	if r.store == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.store.SetStatus(writeCtx, key, value); err != nil {
		r.log.Warn("Failed to record job status", map[string]interface{}{
			"key":    key,
			"status": value,
			"error":  err.Error(),
		})
	}
}

// Get reads a recorded status. Returns ErrStatusNotFound when the store is
// absent or holds no entry for the key.
func (r *StatusRecorder) Get(ctx context.Context, key string) (string, error) {
	if r.store == nil {
		return "", ErrStatusNotFound
	}
	return r.store.GetStatus(ctx, key)
}

// Healthy reports whether the underlying store is reachable.
func (r *StatusRecorder) Healthy(ctx context.Context) bool {
	if r.store == nil {
		return false
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.store.HealthCheck(checkCtx) == nil
}
