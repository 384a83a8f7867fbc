package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// explainTopN is how many results a ranking explanation covers.
const explainTopN = 5

// SignalContribution is one signal's share of a result's combined
// score: the component value, its weight, and their product.
type SignalContribution struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ResultExplanation breaks down how one result earned its rank.
type ResultExplanation struct {
	Rank       int                           `json:"rank"`
	FilePath   string                        `json:"filePath"`
	StartLine  int                           `json:"startLine"`
	EndLine    int                           `json:"endLine"`
	Symbol     string                        `json:"symbol,omitempty"`
	Kind       string                        `json:"kind"`
	FinalScore float64                       `json:"finalScore"`
	Combined   float64                       `json:"combined"`
	Signals    map[string]SignalContribution `json:"signals"`
}

// RankingExplanation is the observability surface for a query: the top
// results with per-signal weighted contributions. It plays no part in
// scoring itself.
type RankingExplanation struct {
	QueryID    string              `json:"queryId"`
	Query      string              `json:"query"`
	ActiveFile string              `json:"activeFile,omitempty"`
	Results    []ResultExplanation `json:"results"`
}

// ExplainRanking runs a search and explains the top results' component
// scores, weighted contributions, and final ranks.
func (r *Retriever) ExplainRanking(ctx context.Context, query, activeFilePath string) (*RankingExplanation, error) {
	results, err := r.Search(ctx, query, activeFilePath)
	if err != nil {
		return nil, err
	}

	cfg := r.Config()
	if len(results) > explainTopN {
		results = results[:explainTopN]
	}

	explanation := &RankingExplanation{
		QueryID:    uuid.NewString(),
		Query:      query,
		ActiveFile: activeFilePath,
		Results:    make([]ResultExplanation, 0, len(results)),
	}

	for _, res := range results {
		frag := res.Fragment
		explanation.Results = append(explanation.Results, ResultExplanation{
			Rank:       res.Rank,
			FilePath:   frag.FilePath,
			StartLine:  frag.StartLine,
			EndLine:    frag.EndLine,
			Symbol:     frag.SymbolName(),
			Kind:       frag.Kind.String(),
			FinalScore: res.FinalScore,
			Combined:   res.Scores.Combined,
			Signals: map[string]SignalContribution{
				"semantic": {
					Score:        res.Scores.Semantic,
					Weight:       cfg.Weights.Semantic,
					Contribution: res.Scores.Semantic * cfg.Weights.Semantic,
				},
				"temporal": {
					Score:        res.Scores.Temporal,
					Weight:       cfg.Weights.Temporal,
					Contribution: res.Scores.Temporal * cfg.Weights.Temporal,
				},
				"spatial": {
					Score:        res.Scores.Spatial,
					Weight:       cfg.Weights.Spatial,
					Contribution: res.Scores.Spatial * cfg.Weights.Spatial,
				},
				"structural": {
					Score:        res.Scores.Structural,
					Weight:       cfg.Weights.Structural,
					Contribution: res.Scores.Structural * cfg.Weights.Structural,
				},
			},
		})
	}

	return explanation, nil
}

// Render formats the explanation as readable text for terminal output.
func (e *RankingExplanation) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ranking explanation for: %s\n", e.Query)
	if e.ActiveFile != "" {
		fmt.Fprintf(&b, "Active file: %s\n", e.ActiveFile)
	}
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(e.Results) == 0 {
		b.WriteString("No results survived filtering.\n")
		return b.String()
	}

	for _, res := range e.Results {
		location := fmt.Sprintf("%s:%d-%d", res.FilePath, res.StartLine, res.EndLine)
		fmt.Fprintf(&b, "%d. %s (%s)", res.Rank, location, res.Kind)
		if res.Symbol != "" {
			fmt.Fprintf(&b, " - %s", res.Symbol)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   final %.3f, combined %.3f\n", res.FinalScore, res.Combined)

		for _, name := range []string{"semantic", "temporal", "spatial", "structural"} {
			sig := res.Signals[name]
			fmt.Fprintf(&b, "   %-10s %.3f × %.2f = %.3f\n", name, sig.Score, sig.Weight, sig.Contribution)
		}
		b.WriteString("\n")
	}

	return b.String()
}
