package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cre/internal/spatial"
)

var (
	nearbyActiveFile string
	nearbyLimit      int
	nearbyFormat     string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List workspace files closest to the active file",
	Long: `Walk the workspace and rank files by path proximity to the active
file, closest first. Requires a cre.toml workspace.

Examples:
  cre nearby --active-file src/auth/session.go
  cre nearby --active-file src/main.go --limit 5 --format json`,
	Args: cobra.NoArgs,
	Run:  runNearby,
}

func init() {
	nearbyCmd.Flags().StringVar(&nearbyActiveFile, "active-file", "", "File the user is working in (required)")
	nearbyCmd.Flags().IntVar(&nearbyLimit, "limit", 20, "Maximum number of files")
	nearbyCmd.Flags().StringVar(&nearbyFormat, "format", "human", "Output format (json, human, yaml)")
	nearbyCmd.MarkFlagRequired("active-file")
	rootCmd.AddCommand(nearbyCmd)
}

// NearbyResponseCLI lists proximity-ranked files for CLI output
type NearbyResponseCLI struct {
	ActiveFile string                  `json:"activeFile" yaml:"activeFile"`
	Total      int                     `json:"total" yaml:"total"`
	Files      []spatial.FileProximity `json:"files" yaml:"files"`
}

func (r *NearbyResponseCLI) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Files near %s: %d\n\n", r.ActiveFile, r.Total)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "  %.3f  %s\n", f.Score, f.Path)
	}

	return b.String()
}

func runNearby(cmd *cobra.Command, args []string) {
	logger := newLogger(nearbyFormat)
	r := mustGetRetriever(logger)

	files, err := r.Spatial().RelevantFilesByProximity(nearbyActiveFile, r.Config(), nearbyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking workspace: %v\n", err)
		os.Exit(1)
	}
	if files == nil {
		fmt.Fprintln(os.Stderr, "No workspace found; run 'cre init' to create a cre.toml.")
		os.Exit(1)
	}

	response := &NearbyResponseCLI{
		ActiveFile: nearbyActiveFile,
		Total:      len(files),
		Files:      files,
	}

	output, err := FormatResponse(response, OutputFormat(nearbyFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
