package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/metrics"
	"github.com/graderight/grader/pkg/models"
	"github.com/graderight/grader/pkg/store"
	"github.com/graderight/grader/pkg/tracing"
)

// DocumentFetcher downloads a remote document to a local temp file.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextExtractor pulls plain text from a local document file.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// GradingEngine is the LLM-backed analysis and grading dependency.
type GradingEngine interface {
	Analyze(ctx context.Context, solutionText string, rubric *models.GradingRubric) (*models.GradingBlueprint, error)
	Grade(ctx context.Context, studentText, teacherText string, rubric *models.GradingRubric, metadata *models.AssignmentMetadata) (*models.GradingResult, error)
}

// CallbackSender delivers a result payload to a callback URL.
type CallbackSender interface {
	Send(ctx context.Context, url string, payload interface{}) bool
}

// Orchestrator runs the two asynchronous pipelines. Each job ends in exactly
// one terminal state and triggers exactly one callback, success or failure.
type Orchestrator struct {
	scheduler *Scheduler
	fetcher   DocumentFetcher
	extractor TextExtractor
	engine    GradingEngine
	notifier  CallbackSender
	recorder  *store.StatusRecorder
	metrics   *metrics.Metrics
	tracer    *tracing.Provider
	log       *logging.Logger
}

// New wires an orchestrator from its dependencies.
func New(
	scheduler *Scheduler,
	fetcher DocumentFetcher,
	extractor TextExtractor,
	engine GradingEngine,
	notifier CallbackSender,
	recorder *store.StatusRecorder,
	m *metrics.Metrics,
	tracer *tracing.Provider,
	log *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		scheduler: scheduler,
		fetcher:   fetcher,
		extractor: extractor,
		engine:    engine,
		notifier:  notifier,
		recorder:  recorder,
		metrics:   m,
		tracer:    tracer,
		log:       log,
	}
}

// Start begins consuming submitted jobs.
func (o *Orchestrator) Start(ctx context.Context) {
	o.scheduler.Start(ctx, o.process)
}

// Drain waits for in-flight jobs to finish.
func (o *Orchestrator) Drain(ctx context.Context) error {
	return o.scheduler.Drain(ctx)
}

// EnqueueBlueprint queues a blueprint-generation job and returns its job id.
func (o *Orchestrator) EnqueueBlueprint(req models.AnalyzeSolutionRequest) (string, error) {
	job := Job{
		Kind:          models.JobKindBlueprint,
		CorrelationID: req.AssignmentID,
		PDFURL:        req.SolutionPDFURL,
		CallbackURL:   req.CallbackURL,
		Rubric:        req.Rubric,
		Metadata:      req.Metadata,
	}

	if err := o.scheduler.Submit(job); err != nil {
		o.metrics.JobRejected(string(job.Kind))
		return "", err
	}
	o.metrics.JobSubmitted(string(job.Kind))
	return job.ID(), nil
}

// EnqueueGrading queues a submission-grading job and returns its job id.
func (o *Orchestrator) EnqueueGrading(req models.GradeSubmissionRequest) (string, error) {
	job := Job{
		Kind:          models.JobKindGrade,
		CorrelationID: req.SubmissionID,
		PDFURL:        req.SubmissionPDFURL,
		CallbackURL:   req.CallbackURL,
		AssignmentID:  req.AssignmentID,
		Blueprint:     req.GradingBlueprint,
	}

	if err := o.scheduler.Submit(job); err != nil {
		o.metrics.JobRejected(string(job.Kind))
		return "", err
	}
	o.metrics.JobSubmitted(string(job.Kind))
	return job.ID(), nil
}

func (o *Orchestrator) process(ctx context.Context, job Job) {
	switch job.Kind {
	case models.JobKindBlueprint:
		o.processBlueprint(ctx, job)
	case models.JobKindGrade:
		o.processGrading(ctx, job)
	default:
		o.log.Error("Unknown job kind", map[string]interface{}{"kind": string(job.Kind)})
	}
}

// extractedText runs the shared fetch+extract prefix of both pipelines.
// The temp file is removed here on every path where the fetch succeeded.
func (o *Orchestrator) extractedText(ctx context.Context, url string) (string, string, error) {
	path, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", "fetch", err
	}
	defer os.Remove(path)

	text, err := o.extractor.ExtractText(path)
	if err != nil {
		return "", "extract", err
	}
	return text, "", nil
}

func (o *Orchestrator) processBlueprint(ctx context.Context, job Job) {
	start := time.Now()
	ctx, span := o.tracer.StartSpan(ctx, "blueprint.process",
		attribute.String("assignment_id", job.CorrelationID),
	)
	defer span.End()

	o.metrics.JobStarted()
	o.recorder.TrySet(ctx, job.StatusKey(), models.StatusProcessing)

	blueprint, stage, err := o.runBlueprint(ctx, job)

	payload := models.BlueprintCallbackPayload{
		Action:       models.CallbackActionBlueprint,
		AssignmentID: job.CorrelationID,
	}
	if err != nil {
		payload.Error = err.Error()
	} else {
		payload.Blueprint = blueprint
	}

	delivered := o.notifier.Send(ctx, job.CallbackURL, payload)
	o.metrics.CallbackResult(string(job.Kind), delivered)

	if err != nil {
		tracing.SetError(ctx, err)
		o.recorder.TrySet(ctx, job.StatusKey(), models.FailedStatus(err.Error()))
		o.metrics.JobFailed(string(job.Kind), stage, time.Since(start))
		o.log.Error("Blueprint generation failed", map[string]interface{}{
			"assignment_id": job.CorrelationID,
			"stage":         stage,
			"error":         err.Error(),
		})
		return
	}

	o.recorder.TrySet(ctx, job.StatusKey(), models.StatusCompleted)
	o.metrics.JobCompleted(string(job.Kind), time.Since(start))
	o.log.Info("Blueprint generated", map[string]interface{}{
		"assignment_id": job.CorrelationID,
		"concepts":      len(blueprint.Concepts),
		"duration":      time.Since(start).String(),
	})
}

func (o *Orchestrator) runBlueprint(ctx context.Context, job Job) (*models.GradingBlueprint, string, error) {
	text, stage, err := o.extractedText(ctx, job.PDFURL)
	if err != nil {
		return nil, stage, err
	}

	rubric := job.Rubric
	if rubric == nil {
		rubric = models.DefaultRubric()
	}

	blueprint, err := o.engine.Analyze(ctx, text, rubric)
	if err != nil {
		return nil, "analyze", err
	}
	return blueprint, "", nil
}

func (o *Orchestrator) processGrading(ctx context.Context, job Job) {
	start := time.Now()
	ctx, span := o.tracer.StartSpan(ctx, "grading.process",
		attribute.String("submission_id", job.CorrelationID),
		attribute.String("assignment_id", job.AssignmentID),
	)
	defer span.End()

	o.metrics.JobStarted()
	o.recorder.TrySet(ctx, job.StatusKey(), models.StatusProcessing)

	result, stage, err := o.runGrading(ctx, job)

	payload := models.GradingCallbackPayload{
		Action:       models.CallbackActionGrading,
		SubmissionID: job.CorrelationID,
	}
	if err != nil {
		payload.Error = err.Error()
	} else {
		payload.GradingResult = result
	}

	delivered := o.notifier.Send(ctx, job.CallbackURL, payload)
	o.metrics.CallbackResult(string(job.Kind), delivered)

	if err != nil {
		tracing.SetError(ctx, err)
		o.recorder.TrySet(ctx, job.StatusKey(), models.FailedStatus(err.Error()))
		o.metrics.JobFailed(string(job.Kind), stage, time.Since(start))
		o.log.Error("Grading failed", map[string]interface{}{
			"submission_id": job.CorrelationID,
			"stage":         stage,
			"error":         err.Error(),
		})
		return
	}

	o.recorder.TrySet(ctx, job.StatusKey(), models.StatusCompleted)
	o.metrics.JobCompleted(string(job.Kind), time.Since(start))
	o.log.Info("Submission graded", map[string]interface{}{
		"submission_id": job.CorrelationID,
		"score":         fmt.Sprintf("%d/%d", result.Score, result.MaxScore),
		"duration":      time.Since(start).String(),
	})
}

func (o *Orchestrator) runGrading(ctx context.Context, job Job) (*models.GradingResult, string, error) {
	studentText, stage, err := o.extractedText(ctx, job.PDFURL)
	if err != nil {
		return nil, stage, err
	}

	// The reference text comes from the blueprint rather than re-fetching
	// the teacher's solution.
	teacherText := job.Blueprint.ReferenceText()

	metadata := &models.AssignmentMetadata{
		AssignmentID:    job.AssignmentID,
		CourseName:      "Course",
		Topic:           "Topic",
		DifficultyLevel: "medium",
	}

	result, err := o.engine.Grade(ctx, studentText, teacherText, models.DefaultRubric(), metadata)
	if err != nil {
		return nil, "grade", err
	}
	return result, "", nil
}
