package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/career-readiness-api/internal/scoring"
)

func newWeightsCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Validate and print the effective readiness weight table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			calculator, err := loadCalculator(cmd)
			if err != nil {
				return err
			}
			w := calculator.Weights()
			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(w); err != nil {
					return err
				}
				return enc.Close()
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tCAP\tWEIGHT\tMAX")
			for _, cat := range scoring.ReadinessCategories {
				cw, _ := w.Category(cat)
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", cat.DisplayName(), cw.Cap, cw.Weight, cw.Cap*cw.Weight)
			}
			fmt.Fprintf(tw, "%s\t%.2f\t-\t%.2f\n", scoring.CategoryGitHub.DisplayName(), w.GitHubBonusCap, w.GitHubBonusCap)
			fmt.Fprintf(tw, "TOTAL\t\t\t%.2f\n", w.MaxAttainable())
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the table as YAML")
	return cmd
}
