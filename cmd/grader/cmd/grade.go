package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/graderight/grader/pkg/engine"
	"github.com/graderight/grader/pkg/extract"
	"github.com/graderight/grader/pkg/llm"
	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/models"
)

var (
	gradeRubricFile string
	gradeCourse     string
	gradeTopic      string
	gradeDifficulty string
)

var gradeCmd = &cobra.Command{
	Use:   "grade <solution.pdf> <submission.pdf>",
	Short: "Grade a submission against a solution locally",
	Long: `Grades a student submission PDF against a teacher solution PDF
directly on the command line, without the API server or callbacks.
Useful for spot checks and rubric tuning.`,
	Args: cobra.ExactArgs(2),
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringVar(&gradeRubricFile, "rubric", "", "YAML rubric file (default: built-in rubric)")
	gradeCmd.Flags().StringVar(&gradeCourse, "course", "Course", "course name for the grading context")
	gradeCmd.Flags().StringVar(&gradeTopic, "topic", "Topic", "assignment topic for the grading context")
	gradeCmd.Flags().StringVar(&gradeDifficulty, "difficulty", "medium", "difficulty level: easy, medium, hard")
}

func runGrade(cmd *cobra.Command, args []string) error {
	solutionPath, submissionPath := args[0], args[1]

	rubric, err := loadRubric(gradeRubricFile)
	if err != nil {
		return err
	}

	extractor := extract.NewPDFExtractor()
	solutionText, err := extractor.ExtractText(solutionPath)
	if err != nil {
		return fmt.Errorf("solution PDF: %w", err)
	}
	submissionText, err := extractor.ExtractText(submissionPath)
	if err != nil {
		return fmt.Errorf("submission PDF: %w", err)
	}

	logger := logging.NewLogger(logging.WARN, false)
	chatClient := llm.NewClient(llm.Config{
		BaseURL: viper.GetString("llm.base_url"),
		APIKey:  viper.GetString("llm.api_key"),
		Model:   viper.GetString("llm.model"),
		Timeout: viper.GetDuration("llm.timeout"),
	})
	gradingEngine := engine.New(chatClient, logger)

	metadata := &models.AssignmentMetadata{
		AssignmentID:    "local",
		CourseName:      gradeCourse,
		Topic:           gradeTopic,
		DifficultyLevel: gradeDifficulty,
	}

	result, err := gradingEngine.Grade(context.Background(), submissionText, solutionText, rubric, metadata)
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	if IsJSONOutput() {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printGradingResult(result)
	return nil
}

func loadRubric(path string) (*models.GradingRubric, error) {
	if path == "" {
		return models.DefaultRubric(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}

	var rubric models.GradingRubric
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("failed to parse rubric file: %w", err)
	}
	if err := rubric.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric: %w", err)
	}
	return &rubric, nil
}

func printGradingResult(result *models.GradingResult) {
	fmt.Printf("\nScore: %d/%d\n\n", result.Score, result.MaxScore)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Criterion", "Earned", "Max", "Feedback")
	for _, key := range models.CanonicalCriteria {
		if cs, ok := result.ConceptScores[key]; ok {
			table.Append(key, fmt.Sprintf("%d", cs.Earned), fmt.Sprintf("%d", cs.Max), cs.Feedback)
		}
	}
	for key, cs := range result.ConceptScores {
		if !isCanonical(key) {
			table.Append(key, fmt.Sprintf("%d", cs.Earned), fmt.Sprintf("%d", cs.Max), cs.Feedback)
		}
	}
	table.Render()

	if result.OverallFeedback != "" {
		fmt.Printf("\nVerdict: %s\n", result.OverallFeedback)
	}
	if len(result.Improvements) > 0 {
		fmt.Println("\nSuggested improvements:")
		for _, imp := range result.Improvements {
			fmt.Printf("  - %s\n", imp)
		}
	}
}

func isCanonical(key string) bool {
	for _, c := range models.CanonicalCriteria {
		if c == key {
			return true
		}
	}
	return false
}
