package models

import (
	"fmt"
	"sort"
)

// Canonical rubric criterion keys. Every grading result is keyed by these
// four, whatever labels the model invents.
const (
	CriterionConceptCoverage  = "concept_coverage"
	CriterionReasoningQuality = "reasoning_quality"
	CriterionCorrectness      = "correctness"
	CriterionClarity          = "clarity"
)

// CanonicalCriteria lists the four criterion keys in report order.
var CanonicalCriteria = []string{
	CriterionConceptCoverage,
	CriterionReasoningQuality,
	CriterionCorrectness,
	CriterionClarity,
}

// DefaultCriterionMax holds the default maximum points per canonical criterion.
var DefaultCriterionMax = map[string]int{
	CriterionConceptCoverage:  30,
	CriterionReasoningQuality: 25,
	CriterionCorrectness:      30,
	CriterionClarity:          15,
}

// RubricLevel is a single performance band within a criterion
// (excellent, good, partial, poor). ScoreRange is an inclusive [low, high].
type RubricLevel struct {
	ScoreRange  []int  `json:"score_range" yaml:"score_range"`
	Description string `json:"description" yaml:"description"`
}

// RubricCriterion is one named grading criterion with its weight and bands.
type RubricCriterion struct {
	Weight      int                    `json:"weight" yaml:"weight"`
	Description string                 `json:"description" yaml:"description"`
	Levels      map[string]RubricLevel `json:"levels" yaml:"levels"`
}

// GradingRubric is the complete rubric a submission is graded against.
type GradingRubric struct {
	TotalMarks int                        `json:"total_marks" yaml:"total_marks"`
	Criteria   map[string]RubricCriterion `json:"criteria" yaml:"criteria"`
}

// DefaultRubric returns the standard 4-criterion rubric with 100 total marks.
func DefaultRubric() *GradingRubric {
	return &GradingRubric{
		TotalMarks: 100,
		Criteria: map[string]RubricCriterion{
			CriterionConceptCoverage: {
				Weight:      30,
				Description: "Coverage of required theoretical concepts",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{26, 30}, Description: "All core concepts are correctly identified and explained"},
					"good":      {ScoreRange: []int{20, 25}, Description: "Most concepts covered with minor gaps"},
					"partial":   {ScoreRange: []int{10, 19}, Description: "Some important concepts missing or unclear"},
					"poor":      {ScoreRange: []int{0, 9}, Description: "Major conceptual misunderstandings"},
				},
			},
			CriterionReasoningQuality: {
				Weight:      25,
				Description: "Logical flow and soundness of reasoning",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{21, 25}, Description: "Clear, coherent, step-by-step reasoning"},
					"good":      {ScoreRange: []int{16, 20}, Description: "Mostly logical with minor inconsistencies"},
					"partial":   {ScoreRange: []int{8, 15}, Description: "Weak or fragmented reasoning"},
					"poor":      {ScoreRange: []int{0, 7}, Description: "Illogical or unsupported arguments"},
				},
			},
			CriterionCorrectness: {
				Weight:      30,
				Description: "Accuracy of facts, equations, and conclusions",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{26, 30}, Description: "All derivations and statements are correct"},
					"good":      {ScoreRange: []int{20, 25}, Description: "Minor computational or factual errors"},
					"partial":   {ScoreRange: []int{10, 19}, Description: "Multiple errors affecting correctness"},
					"poor":      {ScoreRange: []int{0, 9}, Description: "Mostly incorrect or invalid solution"},
				},
			},
			CriterionClarity: {
				Weight:      15,
				Description: "Clarity, structure, and presentation",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{13, 15}, Description: "Well-structured, clear, and easy to follow"},
					"good":      {ScoreRange: []int{10, 12}, Description: "Understandable but slightly messy"},
					"partial":   {ScoreRange: []int{5, 9}, Description: "Hard to follow"},
					"poor":      {ScoreRange: []int{0, 4}, Description: "Unclear or poorly presented"},
				},
			},
		},
	}
}

// Weights returns the criterion name -> weight map, as echoed in blueprints.
func (r *GradingRubric) Weights() map[string]int {
	weights := make(map[string]int, len(r.Criteria))
	for name, crit := range r.Criteria {
		weights[name] = crit.Weight
	}
	return weights
}

// Validate checks the rubric configuration. For each criterion the level
// bands must be well-formed inclusive ranges that partition 0..weight with
// no gaps and no overlaps. Custom rubrics are rejected at load time when
// this fails.
func (r *GradingRubric) Validate() error {
	if r.TotalMarks <= 0 {
		return fmt.Errorf("rubric total_marks must be positive, got %d", r.TotalMarks)
	}
	if len(r.Criteria) == 0 {
		return fmt.Errorf("rubric has no criteria")
	}

	sum := 0
	for name, crit := range r.Criteria {
		if crit.Weight <= 0 {
			return fmt.Errorf("criterion %q: weight must be positive, got %d", name, crit.Weight)
		}
		sum += crit.Weight

		if len(crit.Levels) == 0 {
			return fmt.Errorf("criterion %q: no levels defined", name)
		}

		ranges := make([][2]int, 0, len(crit.Levels))
		for level, band := range crit.Levels {
			if len(band.ScoreRange) != 2 {
				return fmt.Errorf("criterion %q level %q: score_range must have exactly 2 values", name, level)
			}
			lo, hi := band.ScoreRange[0], band.ScoreRange[1]
			if lo < 0 || hi < lo {
				return fmt.Errorf("criterion %q level %q: invalid score_range [%d, %d]", name, level, lo, hi)
			}
			ranges = append(ranges, [2]int{lo, hi})
		}

		sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })

		if ranges[0][0] != 0 {
			return fmt.Errorf("criterion %q: bands do not start at 0", name)
		}
		for i := 1; i < len(ranges); i++ {
			prev, cur := ranges[i-1], ranges[i]
			if cur[0] != prev[1]+1 {
				return fmt.Errorf("criterion %q: gap or overlap between bands [%d,%d] and [%d,%d]",
					name, prev[0], prev[1], cur[0], cur[1])
			}
		}
		if top := ranges[len(ranges)-1][1]; top != crit.Weight {
			return fmt.Errorf("criterion %q: bands end at %d, want weight %d", name, top, crit.Weight)
		}
	}

	if sum != r.TotalMarks {
		return fmt.Errorf("criterion weights sum to %d, want total_marks %d", sum, r.TotalMarks)
	}
	return nil
}

// AssignmentMetadata describes the assignment a submission belongs to.
type AssignmentMetadata struct {
	AssignmentID    string `json:"assignment_id"`
	CourseName      string `json:"course_name,omitempty"`
	Topic           string `json:"topic,omitempty"`
	DifficultyLevel string `json:"difficulty_level,omitempty"`
	ExpectedLength  string `json:"expected_length,omitempty"`
}
