package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cre/internal/temporal"
)

var (
	recentMaxAge time.Duration
	recentFormat string
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently modified files",
	Long: `List files with a recorded modification inside the age window, most
recent first.

Examples:
  cre recent
  cre recent --max-age 30m --format json`,
	Args: cobra.NoArgs,
	Run:  runRecent,
}

func init() {
	recentCmd.Flags().DurationVar(&recentMaxAge, "max-age", 24*time.Hour, "Age window for modifications")
	recentCmd.Flags().StringVar(&recentFormat, "format", "human", "Output format (json, human, yaml)")
	rootCmd.AddCommand(recentCmd)
}

// RecentResponseCLI lists recent modifications for CLI output
type RecentResponseCLI struct {
	MaxAge string                  `json:"maxAge" yaml:"maxAge"`
	Total  int                     `json:"total" yaml:"total"`
	Files  []temporal.FileActivity `json:"files" yaml:"files"`
}

func (r *RecentResponseCLI) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Files modified within %s: %d\n\n", r.MaxAge, r.Total)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "  %s  %s\n", f.ModifiedAt.Format(time.RFC3339), f.Path)
	}

	return b.String()
}

func runRecent(cmd *cobra.Command, args []string) {
	logger := newLogger(recentFormat)
	r := mustGetRetriever(logger)

	files := r.Temporal().RecentlyModifiedFiles(recentMaxAge)
	response := &RecentResponseCLI{
		MaxAge: recentMaxAge.String(),
		Total:  len(files),
		Files:  files,
	}

	output, err := FormatResponse(response, OutputFormat(recentFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
