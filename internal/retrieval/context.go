package retrieval

import (
	"context"
	"fmt"
	"strings"
)

// tokensPerChar is the rough character-to-token ratio used to budget
// context output. Four characters per token is close enough for code.
const tokensPerChar = 0.25

// EstimateTokens approximates the token cost of a string.
func EstimateTokens(s string) int {
	return int(float64(len(s)) * tokensPerChar)
}

// RelevantContext searches and packs the top results into a single
// context string under a token budget. Entries are accumulated greedily
// and never truncated: the first entry that would overflow the budget
// ends the packing.
func (r *Retriever) RelevantContext(ctx context.Context, query string, maxTokens int) (string, error) {
	results, err := r.Search(ctx, query, "")
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	used := 0
	for _, res := range results {
		entry := formatContextEntry(res)
		cost := EstimateTokens(entry)
		if used+cost > maxTokens {
			break
		}
		b.WriteString(entry)
		used += cost
	}

	return b.String(), nil
}

// formatContextEntry renders one result: a comment header with the
// location and score breakdown, an optional symbol annotation, and the
// raw content.
func formatContextEntry(res *SearchResult) string {
	frag := res.Fragment
	var b strings.Builder

	fmt.Fprintf(&b, "// File: %s (lines %d-%d) | relevance: %.2f (semantic %.2f, temporal %.2f, spatial %.2f, structural %.2f)\n",
		frag.FilePath, frag.StartLine, frag.EndLine, res.FinalScore,
		res.Scores.Semantic, res.Scores.Temporal, res.Scores.Spatial, res.Scores.Structural)

	if frag.Metadata.FunctionName != "" {
		fmt.Fprintf(&b, "// Function: %s\n", frag.Metadata.FunctionName)
	} else if frag.Metadata.ClassName != "" {
		fmt.Fprintf(&b, "// Class: %s\n", frag.Metadata.ClassName)
	}

	b.WriteString(frag.Content)
	if !strings.HasSuffix(frag.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}
