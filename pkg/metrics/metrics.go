package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks grading pipeline activity for Prometheus scraping.
type Metrics struct {
	jobsSubmitted     *prometheus.CounterVec
	jobsCompleted     *prometheus.CounterVec
	jobsFailed        *prometheus.CounterVec
	jobsRejected      *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	callbackDelivered *prometheus.CounterVec
	jobsInFlight      prometheus.Gauge
}

// New creates and registers the grader metrics with the default registry.
func New() *Metrics {
	m := NewUnregistered()

	prometheus.MustRegister(
		m.jobsSubmitted,
		m.jobsCompleted,
		m.jobsFailed,
		m.jobsRejected,
		m.jobDuration,
		m.callbackDelivered,
		m.jobsInFlight,
	)

	return m
}

// NewUnregistered creates metrics without touching the default registry.
// Used by tests to avoid duplicate registration panics.
func NewUnregistered() *Metrics {
	return &Metrics{
		jobsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grader_jobs_submitted_total",
				Help: "Total jobs accepted for processing",
			},
			[]string{"kind"},
		),
		jobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grader_jobs_completed_total",
				Help: "Total jobs that completed successfully",
			},
			[]string{"kind"},
		),
		jobsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grader_jobs_failed_total",
				Help: "Total jobs that reached a failed terminal state",
			},
			[]string{"kind", "stage"},
		),
		jobsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grader_jobs_rejected_total",
				Help: "Total jobs rejected because the queue was full",
			},
			[]string{"kind"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grader_job_duration_seconds",
				Help:    "End-to-end job processing duration",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"kind"},
		),
		callbackDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grader_callbacks_total",
				Help: "Callback delivery attempts by outcome",
			},
			[]string{"kind", "outcome"},
		),
		jobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "grader_jobs_in_flight",
				Help: "Jobs currently being processed",
			},
		),
	}
}

// JobSubmitted records an accepted job.
func (m *Metrics) JobSubmitted(kind string) {
	m.jobsSubmitted.WithLabelValues(kind).Inc()
}

// JobRejected records a job turned away at admission.
func (m *Metrics) JobRejected(kind string) {
	m.jobsRejected.WithLabelValues(kind).Inc()
}

// JobStarted marks a job as in flight.
func (m *Metrics) JobStarted() {
	m.jobsInFlight.Inc()
}

// JobCompleted records a successful job and its duration.
func (m *Metrics) JobCompleted(kind string, duration time.Duration) {
	m.jobsInFlight.Dec()
	m.jobsCompleted.WithLabelValues(kind).Inc()
	m.jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// JobFailed records a failed job, the stage it failed in, and its duration.
func (m *Metrics) JobFailed(kind, stage string, duration time.Duration) {
	m.jobsInFlight.Dec()
	m.jobsFailed.WithLabelValues(kind, stage).Inc()
	m.jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// CallbackResult records a callback delivery outcome.
func (m *Metrics) CallbackResult(kind string, delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.callbackDelivered.WithLabelValues(kind, outcome).Inc()
}
