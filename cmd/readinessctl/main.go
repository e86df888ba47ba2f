// Command readinessctl scores student documents offline with the same engine the API uses.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "readinessctl",
		Short:         "Inspect readiness scores, job matches and weight tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("weights", os.Getenv("READINESS_WEIGHTS_FILE"), "Path to a YAML readiness weight table")
	root.AddCommand(newScoreCmd(), newMatchCmd(), newWeightsCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
