package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cre/internal/retrieval"
)

var (
	searchActiveFile string
	searchLanguage   string
	searchLimit      int
	searchFormat     string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank candidate fragments for a query",
	Long: `Rank the provider's candidate fragments by contextual relevance.

Scoring fuses four signals under the configured weights:
  - semantic similarity (from the candidates file, or lexical fallback)
  - temporal recency of the fragment's file
  - spatial proximity to the active file
  - structural affinity (kind, complexity, exports, documentation)

Examples:
  cre search "parse config" --candidates out/candidates.json
  cre search "session handling" --active-file src/auth/session.go
  cre search "retry logic" --language go --limit 5 --format yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchActiveFile, "active-file", "", "File the user is working in")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "Current language for structural scoring")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (default: configured maxResults)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format (json, human, yaml)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(searchFormat)
	query := args[0]

	r := mustGetRetriever(logger)
	if searchLanguage != "" {
		r.SetLanguage(searchLanguage)
	}
	if searchLimit > 0 {
		cfg := *r.Config()
		cfg.Output.MaxResults = searchLimit
		if err := r.SetConfig(&cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	results, err := r.Search(newContext(), query, searchActiveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
		os.Exit(1)
	}

	response := convertSearchResults(query, searchActiveFile, results)

	output, err := FormatResponse(response, OutputFormat(searchFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Search completed", map[string]interface{}{
		"query":      query,
		"results":    len(results),
		"durationMs": time.Since(start).Milliseconds(),
	})
}

// SearchResponseCLI contains ranked results for CLI output
type SearchResponseCLI struct {
	Query      string            `json:"query" yaml:"query"`
	ActiveFile string            `json:"activeFile,omitempty" yaml:"activeFile,omitempty"`
	Total      int               `json:"total" yaml:"total"`
	Results    []SearchResultCLI `json:"results" yaml:"results"`
}

// SearchResultCLI is one ranked fragment in CLI output
type SearchResultCLI struct {
	Rank       int     `json:"rank" yaml:"rank"`
	FilePath   string  `json:"filePath" yaml:"filePath"`
	StartLine  int     `json:"startLine" yaml:"startLine"`
	EndLine    int     `json:"endLine" yaml:"endLine"`
	Kind       string  `json:"kind" yaml:"kind"`
	Symbol     string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Language   string  `json:"language,omitempty" yaml:"language,omitempty"`
	FinalScore float64 `json:"finalScore" yaml:"finalScore"`
	Semantic   float64 `json:"semantic" yaml:"semantic"`
	Temporal   float64 `json:"temporal" yaml:"temporal"`
	Spatial    float64 `json:"spatial" yaml:"spatial"`
	Structural float64 `json:"structural" yaml:"structural"`
}

func convertSearchResults(query, activeFile string, results []*retrieval.SearchResult) *SearchResponseCLI {
	out := make([]SearchResultCLI, 0, len(results))
	for _, res := range results {
		frag := res.Fragment
		out = append(out, SearchResultCLI{
			Rank:       res.Rank,
			FilePath:   frag.FilePath,
			StartLine:  frag.StartLine,
			EndLine:    frag.EndLine,
			Kind:       frag.Kind.String(),
			Symbol:     frag.SymbolName(),
			Language:   frag.Language,
			FinalScore: res.FinalScore,
			Semantic:   res.Scores.Semantic,
			Temporal:   res.Scores.Temporal,
			Spatial:    res.Scores.Spatial,
			Structural: res.Scores.Structural,
		})
	}

	return &SearchResponseCLI{
		Query:      query,
		ActiveFile: activeFile,
		Total:      len(results),
		Results:    out,
	}
}

func (r *SearchResponseCLI) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Results for: %s\n", r.Query)
	if r.ActiveFile != "" {
		fmt.Fprintf(&b, "Active file: %s\n", r.ActiveFile)
	}
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if r.Total == 0 {
		b.WriteString("No results survived filtering.\n")
		return b.String()
	}

	for _, res := range r.Results {
		fmt.Fprintf(&b, "%d. %s:%d-%d (%s)", res.Rank, res.FilePath, res.StartLine, res.EndLine, res.Kind)
		if res.Symbol != "" {
			fmt.Fprintf(&b, " %s", res.Symbol)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   score %.3f | semantic %.2f temporal %.2f spatial %.2f structural %.2f\n\n",
			res.FinalScore, res.Semantic, res.Temporal, res.Spatial, res.Structural)
	}

	return b.String()
}
