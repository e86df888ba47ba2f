package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/schemas"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
)

func newMatchCmd() *cobra.Command {
	var studentPath, jobPath, output string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a student document against a job document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			student, err := loadStudent(studentPath)
			if err != nil {
				return err
			}
			job, err := loadJob(jobPath)
			if err != nil {
				return err
			}
			matcher, err := scoring.NewMatcher(scoring.DefaultMatchWeights())
			if err != nil {
				return err
			}
			result, err := matcher.Match(student, job)
			if err != nil {
				return fmt.Errorf("match %s: %w", studentPath, err)
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeMatch(cmd.OutOrStdout(), job, result)
		},
	}
	cmd.Flags().StringVarP(&studentPath, "student", "s", "", "Path to a student JSON document (required)")
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Path to a job JSON document (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func loadJob(path string) (*models.Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}
	if err := schemas.ValidateJob(raw); err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job file %s: %w", path, err)
	}
	return &job, nil
}

func writeMatch(w io.Writer, job *models.Job, result scoring.MatchResult) error {
	fmt.Fprintf(w, "%s: %.2f/100\n", job.Title, result.TotalScore)
	if result.Eligible {
		fmt.Fprintln(w, "eligible: yes")
	} else {
		fmt.Fprintf(w, "eligible: no (%s)\n", strings.Join(result.IneligibleReasons, "; "))
	}
	fmt.Fprintf(w, "matched: %s\n", strings.Join(result.SkillsMatched, ", "))
	fmt.Fprintf(w, "missing: %s\n\n", strings.Join(result.SkillsMissing, ", "))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPOINTS")
	for _, cat := range scoring.MatchCategories {
		fmt.Fprintf(tw, "%s\t%.2f\n", cat.DisplayName(), result.Breakdown[cat])
	}
	return tw.Flush()
}
