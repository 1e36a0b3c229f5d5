package engine

import (
	"strings"

	"github.com/graderight/grader/pkg/models"
)

// criterionSynonyms maps normalized labels the model tends to emit onto the
// canonical rubric keys.
var criterionSynonyms = map[string]string{
	"concept_coverage":              models.CriterionConceptCoverage,
	"logical_reasoning":             models.CriterionReasoningQuality,
	"reasoning":                     models.CriterionReasoningQuality,
	"reasoning_quality":             models.CriterionReasoningQuality,
	"logical_reasoning_&_structure": models.CriterionReasoningQuality,
	"correctness":                   models.CriterionCorrectness,
	"correctness_&_accuracy":        models.CriterionCorrectness,
	"clarity":                       models.CriterionClarity,
	"clarity_&_presentation":        models.CriterionClarity,
}

// NormalizeCriterion maps a model-produced criterion label to its canonical
// key: lowercase, spaces become underscores, then known synonyms collapse.
// Unrecognized labels pass through in normalized form.
func NormalizeCriterion(label string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
	if canonical, ok := criterionSynonyms[key]; ok {
		return canonical
	}
	return key
}
