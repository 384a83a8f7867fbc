package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cre/internal/fragment"
	"cre/internal/structural"
)

var similarCmd = &cobra.Command{
	Use:   "similar <fragment-a.json> <fragment-b.json>",
	Short: "Score the structural similarity of two fragments",
	Long: `Compare two fragments by shape: kind, language, complexity closeness,
export parity, import parity, and documentation parity. Prints a
similarity in [0,1].

Example:
  cre similar out/frag_a.json out/frag_b.json`,
	Args: cobra.ExactArgs(2),
	Run:  runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)
}

func loadFragment(path string) (*fragment.CodeFragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment file: %w", err)
	}

	var frag fragment.CodeFragment
	if err := json.Unmarshal(data, &frag); err != nil {
		return nil, fmt.Errorf("failed to parse fragment file: %w", err)
	}

	return &frag, nil
}

func runSimilar(cmd *cobra.Command, args []string) {
	logger := newLogger("human")

	a, err := loadFragment(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", args[0], err)
		os.Exit(1)
	}
	b, err := loadFragment(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", args[1], err)
		os.Exit(1)
	}

	analyzer := structural.NewAnalyzer(logger)
	fmt.Printf("%.3f\n", analyzer.Similarity(a, b))
}
