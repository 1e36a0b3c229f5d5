package orchestrator

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/graderight/grader/pkg/logging"
)

// ErrQueueFull is returned by Submit when the pending queue is at capacity.
// Callers surface it as backpressure rather than blocking the submitter.
var ErrQueueFull = errors.New("scheduling queue full")

// SchedulerConfig defines concurrency limits.
type SchedulerConfig struct {
	MaxConcurrentJobs int64
	QueueSize         int
}

// Scheduler buffers submitted jobs and executes them through a handler with
// bounded concurrency.
type Scheduler struct {
	log          *logging.Logger
	pendingQueue chan Job
	sem          *semaphore.Weighted
	wg           sync.WaitGroup
}

// NewScheduler creates a scheduler. Zero config values fall back to
// 4 concurrent jobs and a queue of 100.
func NewScheduler(cfg SchedulerConfig, log *logging.Logger) *Scheduler {
	limit := cfg.MaxConcurrentJobs
	if limit <= 0 {
		limit = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	return &Scheduler{
		log:          log,
		pendingQueue: make(chan Job, queueSize),
		sem:          semaphore.NewWeighted(limit),
	}
}

// Submit adds a job to the queue, failing fast with ErrQueueFull instead of
// blocking the caller.
func (s *Scheduler) Submit(job Job) error {
	select {
	case s.pendingQueue <- job:
		s.log.Info("Job submitted", map[string]interface{}{
			"job_id": job.ID(),
			"kind":   string(job.Kind),
		})
		return nil
	default:
		return ErrQueueFull
	}
}

// Start consumes the queue until ctx is cancelled, running each job through
// handler in its own goroutine under the concurrency limit.
func (s *Scheduler) Start(ctx context.Context, handler func(context.Context, Job)) {
	s.log.Info("Starting job scheduler")

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Stopping job scheduler")
				return
			case job := <-s.pendingQueue:
				if err := s.sem.Acquire(ctx, 1); err != nil {
					// Shutdown raced the dequeue; the job never ran and
					// never will, so say so instead of losing it silently.
					s.log.Warn("Dropping queued job on shutdown", map[string]interface{}{
						"job_id": job.ID(),
						"kind":   string(job.Kind),
					})
					return
				}

				s.wg.Add(1)
				go func(j Job) {
					defer s.sem.Release(1)
					defer s.wg.Done()
					handler(ctx, j)
				}(job)
			}
		}
	}()
}

// Drain blocks until all in-flight jobs finish or ctx expires.
func (s *Scheduler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
