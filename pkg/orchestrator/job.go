package orchestrator

import "github.com/graderight/grader/pkg/models"

// Job is one unit of asynchronous work: derive a blueprint from a teacher
// solution, or grade a student submission. Jobs are immutable once enqueued.
type Job struct {
	Kind          models.JobKind
	CorrelationID string // assignment id for blueprint jobs, submission id for grading jobs
	PDFURL        string
	CallbackURL   string

	// Blueprint jobs
	Rubric   *models.GradingRubric
	Metadata *models.AssignmentMetadata

	// Grading jobs
	AssignmentID string
	Blueprint    *models.GradingBlueprint
}

// ID returns the caller-visible job identifier.
func (j Job) ID() string {
	return j.Kind.JobID(j.CorrelationID)
}

// StatusKey returns the job store key.
func (j Job) StatusKey() string {
	return j.Kind.StatusKey(j.CorrelationID)
}
