package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/models"
	"github.com/graderight/grader/pkg/orchestrator"
	"github.com/graderight/grader/pkg/store"
)

// GraderHandler handles the grading service API requests
type GraderHandler struct {
	orch     *orchestrator.Orchestrator
	recorder *store.StatusRecorder
	log      *logging.Logger
	version  string
}

// NewGraderHandler creates a new grader handler
func NewGraderHandler(orch *orchestrator.Orchestrator, recorder *store.StatusRecorder, log *logging.Logger, version string) *GraderHandler {
	return &GraderHandler{
		orch:     orch,
		recorder: recorder,
		log:      log,
		version:  version,
	}
}

// RegisterRoutes registers all API routes
func (h *GraderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/analyze-solution", h.AnalyzeSolution).Methods("POST")
	r.HandleFunc("/grade-submission", h.GradeSubmission).Methods("POST")
	r.HandleFunc("/jobs/{id}/status", h.JobStatus).Methods("GET")
}

// Health handles health check requests
func (h *GraderHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewHealthResponse(h.version, h.recorder.Healthy(r.Context())))
}

// AnalyzeSolution accepts a blueprint-generation job
func (h *GraderHandler) AnalyzeSolution(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssignmentID == "" || req.SolutionPDFURL == "" || req.CallbackURL == "" {
		writeError(w, http.StatusBadRequest, "assignment_id, solution_pdf_url and callback_url are required")
		return
	}

	// A malformed custom rubric is rejected at submission, not mid-job.
	if req.Rubric != nil {
		if err := req.Rubric.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid rubric: %v", err))
			return
		}
	}

	jobID, err := h.orch.EnqueueBlueprint(req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "job queue is full, retry later")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	h.log.Info("Blueprint job accepted", map[string]interface{}{
		"assignment_id": req.AssignmentID,
		"job_id":        jobID,
	})

	writeJSON(w, http.StatusAccepted, models.AnalyzeSolutionResponse{
		Success: true,
		Message: "Solution analysis started. Blueprint will be sent to callback URL.",
		JobID:   jobID,
	})
}

// GradeSubmission accepts a submission-grading job
func (h *GraderHandler) GradeSubmission(w http.ResponseWriter, r *http.Request) {
	var req models.GradeSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SubmissionID == "" || req.AssignmentID == "" || req.SubmissionPDFURL == "" || req.CallbackURL == "" {
		writeError(w, http.StatusBadRequest, "submission_id, assignment_id, submission_pdf_url and callback_url are required")
		return
	}
	if req.GradingBlueprint == nil {
		writeError(w, http.StatusBadRequest, "grading_blueprint is required")
		return
	}

	jobID, err := h.orch.EnqueueGrading(req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "job queue is full, retry later")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	h.log.Info("Grading job accepted", map[string]interface{}{
		"submission_id": req.SubmissionID,
		"assignment_id": req.AssignmentID,
		"job_id":        jobID,
	})

	writeJSON(w, http.StatusAccepted, models.GradeSubmissionResponse{
		Success: true,
		Message: "Grading started. Results will be sent to callback URL.",
		JobID:   jobID,
	})
}

// JobStatus reports the recorded status for a job id like "blueprint_<id>"
// or "grade_<id>".
func (h *GraderHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	kind, correlationID, ok := splitJobID(jobID)
	if !ok {
		writeError(w, http.StatusBadRequest, "job id must look like blueprint_<assignment_id> or grade_<submission_id>")
		return
	}

	status, err := h.recorder.Get(r.Context(), kind.StatusKey(correlationID))
	if err != nil {
		if errors.Is(err, store.ErrStatusNotFound) {
			writeError(w, http.StatusNotFound, "no status recorded for job")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read job status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"job_id": jobID,
		"status": status,
	})
}

func splitJobID(jobID string) (models.JobKind, string, bool) {
	switch {
	case strings.HasPrefix(jobID, "blueprint_"):
		return models.JobKindBlueprint, strings.TrimPrefix(jobID, "blueprint_"), true
	case strings.HasPrefix(jobID, "grade_"):
		return models.JobKindGrade, strings.TrimPrefix(jobID, "grade_"), true
	default:
		return "", "", false
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
