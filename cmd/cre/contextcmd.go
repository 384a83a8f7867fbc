package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cre/internal/retrieval"
)

var contextMaxTokens int

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Pack top results into a token-budgeted context block",
	Long: `Search and pack the highest-ranked fragments into a single annotated
context string suitable for prompt injection. Entries are added in rank
order and never truncated; packing stops at the first entry that would
exceed the budget.

Examples:
  cre context "connection pooling" --candidates out/candidates.json
  cre context "error handling" --max-tokens 1000`,
	Args: cobra.ExactArgs(1),
	Run:  runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 2000, "Token budget for the packed context")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	r := mustGetRetriever(logger)

	packed, err := r.RelevantContext(newContext(), args[0], contextMaxTokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building context: %v\n", err)
		os.Exit(1)
	}

	if packed == "" {
		fmt.Fprintln(os.Stderr, "No context fit the budget.")
		return
	}

	fmt.Print(packed)
	logger.Debug("Context packed", map[string]interface{}{
		"query":     args[0],
		"maxTokens": contextMaxTokens,
		"tokens":    retrieval.EstimateTokens(packed),
	})
}
