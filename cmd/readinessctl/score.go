package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/schemas"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	var studentPath, output string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the readiness score of a student document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			student, err := loadStudent(studentPath)
			if err != nil {
				return err
			}
			calculator, err := loadCalculator(cmd)
			if err != nil {
				return err
			}
			result, err := calculator.Calculate(student)
			if err != nil {
				return fmt.Errorf("score %s: %w", studentPath, err)
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeScore(cmd.OutOrStdout(), student, result)
		},
	}
	cmd.Flags().StringVarP(&studentPath, "student", "s", "", "Path to a student JSON document (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

// loadStudent validates the raw document against the student schema before decoding it.
func loadStudent(path string) (*models.Student, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read student file %s: %w", path, err)
	}
	if err := schemas.ValidateStudent(raw); err != nil {
		return nil, err
	}
	var student models.Student
	if err := json.Unmarshal(raw, &student); err != nil {
		return nil, fmt.Errorf("decode student file %s: %w", path, err)
	}
	return &student, nil
}

func loadCalculator(cmd *cobra.Command) (*scoring.Calculator, error) {
	path, _ := cmd.Flags().GetString("weights")
	weights, err := scoring.LoadWeightsFile(path)
	if err != nil {
		return nil, err
	}
	return scoring.NewCalculator(weights)
}

func writeScore(w io.Writer, student *models.Student, result scoring.Result) error {
	name := student.Name
	if name == "" {
		name = student.ID
	}
	fmt.Fprintf(w, "%s: %d/100 (raw %.2f)\n\n", name, result.Total, result.Raw)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPOINTS")
	for _, cat := range append(append([]scoring.Category{}, scoring.ReadinessCategories...), scoring.CategoryGitHub) {
		fmt.Fprintf(tw, "%s\t%.2f\n", cat.DisplayName(), result.Breakdown[cat])
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
