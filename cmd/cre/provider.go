package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cre/internal/fragment"
	"cre/internal/retrieval"
)

// candidateFile is the on-disk shape of a provider candidate set. The
// CLI never computes embeddings; an external semantic search dumps its
// matches here and cre ranks them.
type candidateFile struct {
	Candidates []candidateEntry `json:"candidates"`
}

type candidateEntry struct {
	Fragment fragment.CodeFragment `json:"fragment"`

	// Similarity is optional; absent means the provider did not score
	// the match and the retriever falls back to lexical overlap
	Similarity *float64 `json:"similarity,omitempty"`
}

// fileProvider serves candidates from a JSON file, standing in for the
// external vector-search subsystem.
type fileProvider struct {
	matches []retrieval.SemanticMatch
}

// newFileProvider loads a candidate file. An empty path yields a
// provider with no candidates.
func newFileProvider(path string) (*fileProvider, error) {
	if path == "" {
		return &fileProvider{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file: %w", err)
	}

	var file candidateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse candidates file: %w", err)
	}

	matches := make([]retrieval.SemanticMatch, 0, len(file.Candidates))
	for i := range file.Candidates {
		entry := &file.Candidates[i]
		similarity := -1.0
		if entry.Similarity != nil {
			similarity = *entry.Similarity
		}
		matches = append(matches, retrieval.SemanticMatch{
			Fragment:   &entry.Fragment,
			Similarity: similarity,
		})
	}

	return &fileProvider{matches: matches}, nil
}

// Search returns up to limit candidates in file order.
func (p *fileProvider) Search(ctx context.Context, query string, limit int) ([]retrieval.SemanticMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(p.matches) > limit {
		return p.matches[:limit], nil
	}
	return p.matches, nil
}
