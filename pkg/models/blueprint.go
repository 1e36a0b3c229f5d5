package models

import (
	"strings"
	"time"
)

// BlueprintConcept is a single gradable concept extracted from the
// teacher's solution.
type BlueprintConcept struct {
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}

// GradingBlueprint is the artifact derived from a teacher's solution.
// It is produced once per assignment and consumed read-only by every
// grading job for that assignment.
type GradingBlueprint struct {
	Concepts      []BlueprintConcept `json:"concepts"`
	ExpectedSteps []string           `json:"expected_steps"`
	KeyFacts      []string           `json:"key_facts"`
	Rubric        map[string]int     `json:"rubric"`
	TotalPoints   int                `json:"total_points"`
	CreatedAt     string             `json:"created_at"`
}

// NewBlueprint returns a blueprint stamped with the current UTC time.
func NewBlueprint(concepts []BlueprintConcept, steps, facts []string, rubric map[string]int, totalPoints int) *GradingBlueprint {
	return &GradingBlueprint{
		Concepts:      concepts,
		ExpectedSteps: steps,
		KeyFacts:      facts,
		Rubric:        rubric,
		TotalPoints:   totalPoints,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

// ReferenceText reconstructs the teacher-solution reference used during
// grading when the original solution text is not re-fetched: the expected
// steps followed by the key facts, one per line.
func (b *GradingBlueprint) ReferenceText() string {
	lines := make([]string, 0, len(b.ExpectedSteps)+len(b.KeyFacts))
	lines = append(lines, b.ExpectedSteps...)
	lines = append(lines, b.KeyFacts...)
	return strings.Join(lines, "\n")
}
