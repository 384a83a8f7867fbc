// Package retrieval combines semantic, temporal, spatial, and
// structural relevance signals into one ranked result set. The
// Combiner owns the numeric policy; the Retriever orchestrates the
// analyzers around an external semantic search provider.
package retrieval

import (
	"context"
	"math"
	"time"

	"cre/internal/fragment"
)

// RelevanceScores holds the per-signal relevance components for one
// fragment. Every component lives in [0, 1]. Combined is written once
// by the Combiner.
type RelevanceScores struct {
	Semantic   float64 `json:"semantic"`
	Temporal   float64 `json:"temporal"`
	Spatial    float64 `json:"spatial"`
	Structural float64 `json:"structural"`
	Combined   float64 `json:"combined"`
}

// valid reports whether every component is finite and in range.
func (s *RelevanceScores) valid() bool {
	for _, v := range []float64{s.Semantic, s.Temporal, s.Spatial, s.Structural} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// SearchResult pairs a fragment with its scores. FinalScore starts as
// the combined score and moves through the boost and filter stages;
// Rank is assigned only after the surviving set is sorted.
type SearchResult struct {
	Fragment   *fragment.CodeFragment `json:"fragment"`
	Scores     RelevanceScores        `json:"scores"`
	FinalScore float64                `json:"finalScore"`
	Rank       int                    `json:"rank"`

	// rawSemantic preserves the provider-facing semantic score for
	// threshold filtering. Normalization rewrites Scores.Semantic for
	// display, which must not let a weak match slip past the filter.
	rawSemantic    float64
	hasRawSemantic bool

	// modifiedAt is the effective modification time the temporal score
	// was computed from (live notifications win over extraction
	// metadata). The recency boost reads the same timestamp; zero falls
	// back to the fragment metadata.
	modifiedAt time.Time
}

// SemanticMatch is a candidate returned by the semantic provider. A
// negative Similarity means the provider did not score the match and
// the retriever falls back to lexical overlap.
type SemanticMatch struct {
	Fragment   *fragment.CodeFragment `json:"fragment"`
	Similarity float64                `json:"similarity"`
}

// SemanticProvider is the external embedding/vector-search subsystem.
// This package treats it as a black box.
type SemanticProvider interface {
	Search(ctx context.Context, query string, limit int) ([]SemanticMatch, error)
}
