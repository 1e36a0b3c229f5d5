package models

import "time"

// ConceptScore is the earned/max score and feedback for one rubric criterion.
type ConceptScore struct {
	Earned   int    `json:"earned"`
	Max      int    `json:"max"`
	Feedback string `json:"feedback"`
}

// GradingResult is the complete outcome of grading one submission.
// Immutable once produced.
type GradingResult struct {
	Score             int                     `json:"score"`
	MaxScore          int                     `json:"max_score"`
	ConceptScores     map[string]ConceptScore `json:"concept_scores"`
	OverallFeedback   string                  `json:"overall_feedback"`
	Strengths         []string                `json:"strengths"`
	Improvements      []string                `json:"improvements"`
	PlagiarismFlag    bool                    `json:"plagiarism_flag"`
	PlagiarismDetails *string                 `json:"plagiarism_details,omitempty"`
	GradedAt          string                  `json:"graded_at"`
}

// Stamp sets GradedAt to the current UTC time.
func (g *GradingResult) Stamp() {
	g.GradedAt = time.Now().UTC().Format(time.RFC3339)
}
