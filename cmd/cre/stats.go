package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cre/internal/spatial"
	"cre/internal/structural"
	"cre/internal/temporal"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show engine statistics",
	Long: `Show summary statistics: tracked modification timestamps, directory
cache usage, and symbol cache usage.

Examples:
  cre stats
  cre stats --format json`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "human", "Output format (json, human, yaml)")
	rootCmd.AddCommand(statsCmd)
}

// StatsResponseCLI aggregates engine statistics for CLI output
type StatsResponseCLI struct {
	Temporal temporal.Stats              `json:"temporal" yaml:"temporal"`
	Spatial  spatial.CacheStats          `json:"spatial" yaml:"spatial"`
	Symbols  structural.SymbolCacheStats `json:"symbols" yaml:"symbols"`
}

func (r *StatsResponseCLI) renderHuman() string {
	var b strings.Builder

	b.WriteString("Temporal\n")
	fmt.Fprintf(&b, "  tracked files:  %d\n", r.Temporal.TotalFiles)
	fmt.Fprintf(&b, "  recent (1h):    %d\n", r.Temporal.RecentFiles)
	if !r.Temporal.Newest.IsZero() {
		fmt.Fprintf(&b, "  newest:         %s\n", r.Temporal.Newest.Format(time.RFC3339))
		fmt.Fprintf(&b, "  oldest:         %s\n", r.Temporal.Oldest.Format(time.RFC3339))
	}

	b.WriteString("Spatial directory cache\n")
	fmt.Fprintf(&b, "  entries: %d, hits: %d, misses: %d\n",
		r.Spatial.Entries, r.Spatial.Hits, r.Spatial.Misses)

	b.WriteString("Symbol cache\n")
	fmt.Fprintf(&b, "  symbols: %d, hits: %d, misses: %d\n",
		r.Symbols.Symbols, r.Symbols.Hits, r.Symbols.Misses)

	return b.String()
}

func runStats(cmd *cobra.Command, args []string) {
	logger := newLogger(statsFormat)
	r := mustGetRetriever(logger)

	response := &StatsResponseCLI{
		Temporal: r.Temporal().Stats(),
		Spatial:  r.Spatial().CacheStats(),
		Symbols:  r.Structural().Symbols().Stats(),
	}

	output, err := FormatResponse(response, OutputFormat(statsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
