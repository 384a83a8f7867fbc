package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	explainActiveFile string
	explainFormat     string
)

var explainCmd = &cobra.Command{
	Use:   "explain <query>",
	Short: "Explain how the top results earned their ranks",
	Long: `Run a search and break down the top results into per-signal weighted
contributions: each signal's score, its configured weight, and their
product. Useful for tuning weights and debugging surprising rankings.

Examples:
  cre explain "parse config" --candidates out/candidates.json
  cre explain "session handling" --active-file src/auth/session.go --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainActiveFile, "active-file", "", "File the user is working in")
	explainCmd.Flags().StringVar(&explainFormat, "format", "human", "Output format (json, human, yaml)")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) {
	logger := newLogger(explainFormat)
	r := mustGetRetriever(logger)

	explanation, err := r.ExplainRanking(newContext(), args[0], explainActiveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error explaining ranking: %v\n", err)
		os.Exit(1)
	}

	if OutputFormat(explainFormat) == FormatHuman {
		fmt.Print(explanation.Render())
		return
	}

	output, err := FormatResponse(explanation, OutputFormat(explainFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
