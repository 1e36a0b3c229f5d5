package models

// JobKind distinguishes the two pipeline variants.
type JobKind string

const (
	JobKindBlueprint JobKind = "blueprint"
	JobKindGrade     JobKind = "grade"
)

// Job status tokens persisted in the job store. A failed job is stored as
// StatusFailedPrefix + reason, e.g. "failed:document fetch failed".
const (
	StatusProcessing   = "processing"
	StatusCompleted    = "completed"
	StatusFailedPrefix = "failed:"
)

// JobID returns the caller-visible job identifier for a correlation id:
// "blueprint_<assignment_id>" or "grade_<submission_id>".
func (k JobKind) JobID(correlationID string) string {
	return string(k) + "_" + correlationID
}

// StatusKey returns the job store key for a correlation id:
// "job:blueprint:<assignment_id>" or "job:grade:<submission_id>".
func (k JobKind) StatusKey(correlationID string) string {
	return "job:" + string(k) + ":" + correlationID
}

// FailedStatus formats a terminal failure token from an error message.
func FailedStatus(reason string) string {
	return StatusFailedPrefix + reason
}

// IsTerminalStatus reports whether a status token is absorbing.
func IsTerminalStatus(status string) bool {
	if status == StatusCompleted {
		return true
	}
	return len(status) >= len(StatusFailedPrefix) && status[:len(StatusFailedPrefix)] == StatusFailedPrefix
}
