package models

import (
	"testing"
)

func TestDefaultRubricIsValid(t *testing.T) {
	rubric := DefaultRubric()
	if err := rubric.Validate(); err != nil {
		t.Fatalf("default rubric should validate: %v", err)
	}

	if rubric.TotalMarks != 100 {
		t.Errorf("expected total_marks 100, got %d", rubric.TotalMarks)
	}

	weights := rubric.Weights()
	expected := map[string]int{
		CriterionConceptCoverage:  30,
		CriterionReasoningQuality: 25,
		CriterionCorrectness:      30,
		CriterionClarity:          15,
	}
	for name, want := range expected {
		if got := weights[name]; got != want {
			t.Errorf("criterion %s: expected weight %d, got %d", name, want, got)
		}
	}
}

func TestRubricValidateRejectsGaps(t *testing.T) {
	rubric := &GradingRubric{
		TotalMarks: 10,
		Criteria: map[string]RubricCriterion{
			"correctness": {
				Weight:      10,
				Description: "test",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{8, 10}, Description: "great"},
					// Gap: 6-7 is uncovered
					"poor": {ScoreRange: []int{0, 5}, Description: "bad"},
				},
			},
		},
	}

	if err := rubric.Validate(); err == nil {
		t.Fatal("expected validation error for band gap, got nil")
	}
}

func TestRubricValidateRejectsOverlap(t *testing.T) {
	rubric := &GradingRubric{
		TotalMarks: 10,
		Criteria: map[string]RubricCriterion{
			"clarity": {
				Weight:      10,
				Description: "test",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{5, 10}, Description: "great"},
					"poor":      {ScoreRange: []int{0, 6}, Description: "bad"},
				},
			},
		},
	}

	if err := rubric.Validate(); err == nil {
		t.Fatal("expected validation error for band overlap, got nil")
	}
}

func TestRubricValidateRejectsWeightMismatch(t *testing.T) {
	rubric := &GradingRubric{
		TotalMarks: 100,
		Criteria: map[string]RubricCriterion{
			"correctness": {
				Weight:      50,
				Description: "test",
				Levels: map[string]RubricLevel{
					"excellent": {ScoreRange: []int{26, 50}, Description: "great"},
					"poor":      {ScoreRange: []int{0, 25}, Description: "bad"},
				},
			},
		},
	}

	// Weights sum to 50, total_marks is 100
	if err := rubric.Validate(); err == nil {
		t.Fatal("expected validation error for weight sum mismatch, got nil")
	}
}

func TestJobIdentifiers(t *testing.T) {
	if got := JobKindBlueprint.JobID("a-1"); got != "blueprint_a-1" {
		t.Errorf("expected blueprint_a-1, got %s", got)
	}
	if got := JobKindGrade.JobID("s-9"); got != "grade_s-9" {
		t.Errorf("expected grade_s-9, got %s", got)
	}
	if got := JobKindBlueprint.StatusKey("a-1"); got != "job:blueprint:a-1" {
		t.Errorf("expected job:blueprint:a-1, got %s", got)
	}
	if got := JobKindGrade.StatusKey("s-9"); got != "job:grade:s-9" {
		t.Errorf("expected job:grade:s-9, got %s", got)
	}
}

func TestBlueprintReferenceText(t *testing.T) {
	bp := NewBlueprint(nil,
		[]string{"identify forces", "apply F = ma"},
		[]string{"F = ma"},
		DefaultCriterionMax, 100)

	want := "identify forces\napply F = ma\nF = ma"
	if got := bp.ReferenceText(); got != want {
		t.Errorf("ReferenceText() = %q, want %q", got, want)
	}

	empty := NewBlueprint(nil, []string{}, []string{}, DefaultCriterionMax, 100)
	if got := empty.ReferenceText(); got != "" {
		t.Errorf("Expected empty reference text, got %q", got)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{StatusProcessing, false},
		{StatusCompleted, true},
		{FailedStatus("fetch failed"), true},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsTerminalStatus(tc.status); got != tc.want {
			t.Errorf("IsTerminalStatus(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
