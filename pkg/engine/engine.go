package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/models"
)

// ErrMalformedModelOutput is returned when the model response cannot be
// parsed into the expected JSON shape.
var ErrMalformedModelOutput = errors.New("malformed model output")

// ChatClient is the completion dependency; satisfied by llm.Client.
type ChatClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Engine derives grading blueprints from reference solutions and scores
// student submissions against them.
type Engine struct {
	client ChatClient
	log    *logging.Logger
}

// New creates a grading engine over the given chat client.
func New(client ChatClient, log *logging.Logger) *Engine {
	return &Engine{client: client, log: log}
}

type analysisResponse struct {
	Concepts []struct {
		Name        string  `json:"name"`
		Weight      float64 `json:"weight"`
		Description string  `json:"description"`
	} `json:"concepts"`
	ExpectedSteps []string       `json:"expected_steps"`
	KeyFacts      []string       `json:"key_facts"`
	Rubric        map[string]int `json:"rubric"`
}

// Analyze decomposes a teacher's solution text into a grading blueprint.
func (e *Engine) Analyze(ctx context.Context, solutionText string, rubric *models.GradingRubric) (*models.GradingBlueprint, error) {
	raw, err := e.client.CompleteJSON(ctx, analysisSystemPrompt, buildAnalysisPrompt(solutionText, rubric))
	if err != nil {
		return nil, fmt.Errorf("solution analysis failed: %w", err)
	}

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	concepts := make([]models.BlueprintConcept, 0, len(parsed.Concepts))
	for _, c := range parsed.Concepts {
		concepts = append(concepts, models.BlueprintConcept{
			Name:        c.Name,
			Weight:      int(math.Round(c.Weight)),
			Description: c.Description,
		})
	}

	steps := parsed.ExpectedSteps
	if steps == nil {
		steps = []string{}
	}
	facts := parsed.KeyFacts
	if facts == nil {
		facts = []string{}
	}

	weights := parsed.Rubric
	if len(weights) == 0 {
		weights = models.DefaultCriterionMax
	}

	bp := models.NewBlueprint(concepts, steps, facts, weights, rubric.TotalMarks)

	e.log.Info("Solution analyzed", map[string]interface{}{
		"concepts":       len(bp.Concepts),
		"expected_steps": len(bp.ExpectedSteps),
		"key_facts":      len(bp.KeyFacts),
	})

	return bp, nil
}

type gradingResponse struct {
	OverallScore struct {
		Obtained float64 `json:"obtained"`
		Maximum  float64 `json:"maximum"`
	} `json:"overall_score"`
	RubricBreakdown []struct {
		Criterion    string  `json:"criterion"`
		MaxMarks     float64 `json:"max_marks"`
		AwardedMarks float64 `json:"awarded_marks"`
		Evaluation   string  `json:"evaluation"`
	} `json:"rubric_breakdown"`
	FinalVerdict struct {
		Summary string `json:"summary"`
	} `json:"final_verdict"`
	ActionableFeedback []string `json:"actionable_feedback"`
}

// Grade scores a student submission against the reference text derived from
// a blueprint. Criterion labels from the model are normalized onto canonical
// keys, and any canonical criterion the model skipped is synthesized with
// zero marks so results always cover the full rubric.
func (e *Engine) Grade(ctx context.Context, studentText, teacherText string, rubric *models.GradingRubric, metadata *models.AssignmentMetadata) (*models.GradingResult, error) {
	prompt := buildGradingPrompt(metadata, rubric, teacherText, studentText)

	raw, err := e.client.CompleteJSON(ctx, gradingSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("submission grading failed: %w", err)
	}

	var parsed gradingResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	conceptScores := make(map[string]models.ConceptScore)
	for _, b := range parsed.RubricBreakdown {
		key := NormalizeCriterion(b.Criterion)
		max := int(math.Round(b.MaxMarks))
		if max < 0 {
			max = 0
		}
		conceptScores[key] = models.ConceptScore{
			Earned:   clamp(int(math.Round(b.AwardedMarks)), 0, max),
			Max:      max,
			Feedback: b.Evaluation,
		}
	}

	// Completeness guarantee: every canonical criterion appears.
	for _, key := range models.CanonicalCriteria {
		if _, ok := conceptScores[key]; !ok {
			conceptScores[key] = models.ConceptScore{
				Earned:   0,
				Max:      models.DefaultCriterionMax[key],
				Feedback: "Not evaluated",
			}
		}
	}

	maxScore := int(math.Round(parsed.OverallScore.Maximum))
	if maxScore <= 0 {
		maxScore = rubric.TotalMarks
	}

	result := &models.GradingResult{
		Score:           clamp(int(math.Round(parsed.OverallScore.Obtained)), 0, maxScore),
		MaxScore:        maxScore,
		ConceptScores:   conceptScores,
		OverallFeedback: parsed.FinalVerdict.Summary,
		Strengths:       []string{},
		Improvements:    parsed.ActionableFeedback,
		PlagiarismFlag:  false,
	}
	result.Stamp()

	e.log.Info("Submission graded", map[string]interface{}{
		"score":     result.Score,
		"max_score": result.MaxScore,
	})

	return result, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
