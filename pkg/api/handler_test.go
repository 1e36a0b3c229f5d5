package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/metrics"
	"github.com/graderight/grader/pkg/models"
	"github.com/graderight/grader/pkg/orchestrator"
	"github.com/graderight/grader/pkg/store"
	"github.com/graderight/grader/pkg/tracing"
)

type nullFetcher struct{}

func (nullFetcher) Fetch(ctx context.Context, url string) (string, error) { return "", nil }

type nullExtractor struct{}

func (nullExtractor) ExtractText(path string) (string, error) { return "", nil }

type nullEngine struct{}

func (nullEngine) Analyze(ctx context.Context, text string, rubric *models.GradingRubric) (*models.GradingBlueprint, error) {
	return nil, nil
}

func (nullEngine) Grade(ctx context.Context, studentText, teacherText string, rubric *models.GradingRubric, metadata *models.AssignmentMetadata) (*models.GradingResult, error) {
	return nil, nil
}

type nullNotifier struct{}

func (nullNotifier) Send(ctx context.Context, url string, payload interface{}) bool { return true }

func newTestRouter(t *testing.T, queueSize int) (*mux.Router, *store.MemoryStore) {
	t.Helper()

	log := logging.NewLogger(logging.FATAL, false)
	memStore := store.NewMemoryStore()
	recorder := store.NewStatusRecorder(memStore, log)
	tracer, err := tracing.InitTracer(tracing.Config{ServiceName: "test", Enabled: false})
	if err != nil {
		t.Fatalf("Failed to init tracer: %v", err)
	}

	// The scheduler is never started, so submitted jobs sit in the queue and
	// acks can be asserted without pipeline side effects.
	sched := orchestrator.NewScheduler(orchestrator.SchedulerConfig{MaxConcurrentJobs: 1, QueueSize: queueSize}, log)
	orch := orchestrator.New(sched, nullFetcher{}, nullExtractor{}, nullEngine{}, nullNotifier{},
		recorder, metrics.NewUnregistered(), tracer, log)

	h := NewGraderHandler(orch, recorder, log, "test")
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r, memStore
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validAnalyzeRequest() models.AnalyzeSolutionRequest {
	return models.AnalyzeSolutionRequest{
		AssignmentID:   "a1",
		SolutionPDFURL: "http://example.com/solution.pdf",
		CallbackURL:    "http://example.com/callback",
	}
}

func validGradeRequest() models.GradeSubmissionRequest {
	return models.GradeSubmissionRequest{
		SubmissionID:     "sub-1",
		AssignmentID:     "a1",
		SubmissionPDFURL: "http://example.com/sub.pdf",
		CallbackURL:      "http://example.com/callback",
		GradingBlueprint: models.NewBlueprint(nil, []string{"step"}, nil, models.DefaultCriterionMax, 100),
	}
}

func TestAnalyzeSolutionAccepted(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	rec := postJSON(t, router, "/analyze-solution", validAnalyzeRequest())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AnalyzeSolutionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.JobID != "blueprint_a1" {
		t.Errorf("Unexpected ack: %+v", resp)
	}
}

func TestAnalyzeSolutionMissingFields(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := validAnalyzeRequest()
	req.CallbackURL = ""
	rec := postJSON(t, router, "/analyze-solution", req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeSolutionInvalidRubric(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := validAnalyzeRequest()
	// A rubric whose weights cannot sum to the total is rejected up front.
	req.Rubric = &models.GradingRubric{
		TotalMarks: 100,
		Criteria: map[string]models.RubricCriterion{
			"correctness": {Weight: 10},
		},
	}
	rec := postJSON(t, router, "/analyze-solution", req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid rubric, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGradeSubmissionAccepted(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	rec := postJSON(t, router, "/grade-submission", validGradeRequest())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.GradeSubmissionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.JobID != "grade_sub-1" {
		t.Errorf("Unexpected ack: %+v", resp)
	}
}

func TestGradeSubmissionRequiresBlueprint(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := validGradeRequest()
	req.GradingBlueprint = nil
	rec := postJSON(t, router, "/grade-submission", req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestQueueFullReturns503(t *testing.T) {
	router, _ := newTestRouter(t, 1)

	if rec := postJSON(t, router, "/analyze-solution", validAnalyzeRequest()); rec.Code != http.StatusAccepted {
		t.Fatalf("First submit should be accepted, got %d", rec.Code)
	}
	if rec := postJSON(t, router, "/analyze-solution", validAnalyzeRequest()); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when queue is full, got %d", rec.Code)
	}
}

func TestJobStatusEndpoint(t *testing.T) {
	router, memStore := newTestRouter(t, 10)
	memStore.SetStatus(context.Background(), "job:grade:sub-9", "completed")

	req := httptest.NewRequest("GET", "/jobs/grade_sub-9/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "completed" || body["job_id"] != "grade_sub-9" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := httptest.NewRequest("GET", "/jobs/blueprint_missing/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestJobStatusBadID(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := httptest.NewRequest("GET", "/jobs/bogus/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, 10)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.HealthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "healthy" || !resp.StoreConnected {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}
