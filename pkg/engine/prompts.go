package engine

import (
	"encoding/json"
	"fmt"

	"github.com/graderight/grader/pkg/models"
)

const (
	analysisSystemPrompt = "You are an expert academic grader. Output valid JSON only."
	gradingSystemPrompt  = "You are a strict academic grader. Output valid JSON only."
)

// buildAnalysisPrompt asks the model to decompose a reference solution into
// a grading blueprint.
func buildAnalysisPrompt(solutionText string, rubric *models.GradingRubric) string {
	weights, _ := json.Marshal(rubric.Weights())

	return fmt.Sprintf(`You are an expert academic grader. Analyze the following teacher's solution and extract a grading blueprint.

SOLUTION:
"""
%s
"""

RUBRIC WEIGHTS:
%s

Extract the following in JSON format:
{
    "concepts": [
        {"name": "concept name", "weight": points, "description": "what student must demonstrate"}
    ],
    "expected_steps": ["step 1", "step 2", ...],
    "key_facts": ["fact that must be correct", ...],
    "rubric": {"concept_coverage": 30, "reasoning_quality": 25, "correctness": 30, "clarity": 15}
}

Be specific and actionable. These will be used to grade student submissions.`, solutionText, weights)
}

// buildGradingPrompt constructs the strict examiner prompt comparing a
// student submission against the reference text under a binding rubric.
func buildGradingPrompt(metadata *models.AssignmentMetadata, rubric *models.GradingRubric, teacherText, studentText string) string {
	metaJSON, _ := json.MarshalIndent(metadata, "", "  ")
	rubricJSON, _ := json.MarshalIndent(rubric, "", "  ")

	return fmt.Sprintf(`You are a strict automated academic evaluator acting as a university examiner.

This is a FORMAL GRADING TASK.
Your output must be defensible under academic audit.

You must grade the student strictly using:
1. The teacher-provided reference solution (ground truth)
2. The binding grading rubric

Do NOT be lenient.
Do NOT infer intent.
Grade ONLY what is explicitly written.

---

## ASSIGNMENT METADATA (READ-ONLY)
Defines scope and maximum marks.
Do NOT invent criteria.

%s

---

## GRADING RUBRIC (BINDING)
Marks must strictly follow this rubric.
The sum of all awarded marks MUST equal the total score.

%s

---

## TEACHER'S SOLUTION (AUTHORITATIVE)
Defines conceptual correctness and expected coverage.
Alternative phrasing is acceptable ONLY if conceptually equivalent.

<<<BEGIN TEACHER SOLUTION>>>
%s
<<<END TEACHER SOLUTION>>>

---

## STUDENT SUBMISSION
Evaluate objectively.
No assumptions.
No intent inference.

<<<BEGIN STUDENT SUBMISSION>>>
%s
<<<END STUDENT SUBMISSION>>>

---

## NON-NEGOTIABLE GRADING RULES

- Grade criterion-by-criterion against the rubric.
- Conceptual accuracy is mandatory.
- Explicitly label incorrect statements as:
  "Incorrect" or "Conceptual misunderstanding"
- Major conceptual errors MUST result in major deductions.
- Partial credit allowed ONLY when:
  - Core concept is correct but incomplete
- Incorrect definitions receive ZERO for that criterion.
- Do NOT reward verbosity, tone, or structure alone.
- Do NOT cite the teacher solution directly in feedback.

---

## OUTPUT FORMAT (STRICT JSON ONLY)
No markdown. No explanations outside JSON.

{
  "overall_score": {
    "obtained": <number>,
    "maximum": <number>,
    "percentage": <number>
  },
  "rubric_breakdown": [
    {
      "criterion": "<criterion name>",
      "max_marks": <number>,
      "awarded_marks": <number>,
      "evaluation": "<why marks were awarded/deducted>"
    }
  ],
  "final_verdict": {
    "summary": "<one-line strict academic judgment>"
  },
  "actionable_feedback": [
    "<concrete improvement>",
    "<concrete improvement>"
  ]
}`, metaJSON, rubricJSON, teacherText, studentText)
}
