package models

import "time"

// CallbackActionBlueprint and CallbackActionGrading identify callback payloads
// to the receiving endpoint.
const (
	CallbackActionBlueprint = "blueprint-callback"
	CallbackActionGrading   = "grading-callback"
)

// AnalyzeSolutionRequest is the body of POST /analyze-solution.
type AnalyzeSolutionRequest struct {
	AssignmentID   string              `json:"assignment_id"`
	SolutionPDFURL string              `json:"solution_pdf_url"`
	CallbackURL    string              `json:"callback_url"`
	Rubric         *GradingRubric      `json:"rubric,omitempty"`
	Metadata       *AssignmentMetadata `json:"metadata,omitempty"`
}

// AnalyzeSolutionResponse is the immediate acknowledgment for an accepted
// blueprint-generation job.
type AnalyzeSolutionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// GradeSubmissionRequest is the body of POST /grade-submission.
type GradeSubmissionRequest struct {
	SubmissionID     string            `json:"submission_id"`
	AssignmentID     string            `json:"assignment_id"`
	SubmissionPDFURL string            `json:"submission_pdf_url"`
	GradingBlueprint *GradingBlueprint `json:"grading_blueprint"`
	CallbackURL      string            `json:"callback_url"`
}

// GradeSubmissionResponse is the immediate acknowledgment for an accepted
// grading job.
type GradeSubmissionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// BlueprintCallbackPayload is delivered to the callback URL when a
// blueprint-generation job reaches a terminal state. Exactly one of
// Blueprint and Error is set.
type BlueprintCallbackPayload struct {
	Action       string            `json:"action"`
	AssignmentID string            `json:"assignment_id"`
	Blueprint    *GradingBlueprint `json:"blueprint,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// GradingCallbackPayload is delivered to the callback URL when a grading job
// reaches a terminal state. Exactly one of GradingResult and Error is set.
type GradingCallbackPayload struct {
	Action        string         `json:"action"`
	SubmissionID  string         `json:"submission_id"`
	GradingResult *GradingResult `json:"grading_result,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	StoreConnected bool   `json:"store_connected"`
	Timestamp      string `json:"timestamp"`
}

// NewHealthResponse builds a health probe response stamped with the current
// UTC time.
func NewHealthResponse(version string, storeConnected bool) HealthResponse {
	return HealthResponse{
		Status:         "healthy",
		Version:        version,
		StoreConnected: storeConnected,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}
