package retrieval

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cre/internal/config"
	"cre/internal/errors"
	"cre/internal/logging"
	"cre/internal/spatial"
	"cre/internal/structural"
	"cre/internal/temporal"
)

// overFetchFactor is how many times MaxResults we request from the
// provider, so filtering and diversity penalties still leave a full
// result page.
const overFetchFactor = 2

// Retriever orchestrates one query: fetch candidates from the semantic
// provider, score each with the three analyzers, and hand the set to
// the combiner pipeline.
type Retriever struct {
	provider   SemanticProvider
	temporal   *temporal.Analyzer
	spatial    *spatial.Resolver
	structural *structural.Analyzer
	combiner   *Combiner
	logger     *logging.Logger

	mu       sync.RWMutex
	cfg      *config.SearchConfig
	language string
}

// NewRetriever creates a retriever. The configuration is validated up
// front; an invalid one is rejected before any query runs.
func NewRetriever(
	provider SemanticProvider,
	temporalAnalyzer *temporal.Analyzer,
	spatialResolver *spatial.Resolver,
	structuralAnalyzer *structural.Analyzer,
	cfg *config.SearchConfig,
	logger *logging.Logger,
) (*Retriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Retriever{
		provider:   provider,
		temporal:   temporalAnalyzer,
		spatial:    spatialResolver,
		structural: structuralAnalyzer,
		combiner:   NewCombiner(logger),
		logger:     logger,
		cfg:        cfg,
	}, nil
}

// SetConfig replaces the configuration between queries. Invalid
// configurations are rejected and the previous one stays active.
func (r *Retriever) SetConfig(cfg *config.SearchConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	return nil
}

// Config returns the active configuration.
func (r *Retriever) Config() *config.SearchConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// SetLanguage sets the caller's current language, used by structural
// scoring. Empty disables the language bonus.
func (r *Retriever) SetLanguage(language string) {
	r.mu.Lock()
	r.language = language
	r.mu.Unlock()
}

// NotifyModified records a file modification with the temporal
// analyzer. Hosts call this on save/create events.
func (r *Retriever) NotifyModified(path string) error {
	return r.temporal.NotifyModified(path)
}

// Temporal returns the temporal analyzer for host stat surfaces.
func (r *Retriever) Temporal() *temporal.Analyzer {
	return r.temporal
}

// Spatial returns the spatial resolver for host stat surfaces.
func (r *Retriever) Spatial() *spatial.Resolver {
	return r.spatial
}

// Structural returns the structural analyzer for host stat surfaces.
func (r *Retriever) Structural() *structural.Analyzer {
	return r.structural
}

// Search runs one ranked retrieval. activeFilePath may be empty, in
// which case spatial scoring stays neutral. An empty candidate set is
// not an error. Provider failures and invalid configurations propagate;
// a single candidate with a broken score is dropped, not fatal.
func (r *Retriever) Search(ctx context.Context, query, activeFilePath string) ([]*SearchResult, error) {
	r.mu.RLock()
	cfg := r.cfg
	language := r.language
	r.mu.RUnlock()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search aborted: %w", err)
	}

	queryID := uuid.NewString()
	start := time.Now()

	matches, err := r.provider.Search(ctx, query, cfg.Output.MaxResults*overFetchFactor)
	if err != nil {
		return nil, errors.Wrap(errors.ProviderFailure, "retriever.search",
			"semantic provider failed", err)
	}
	if len(matches) == 0 {
		return []*SearchResult{}, nil
	}

	candidates, err := r.scoreCandidates(ctx, matches, query, activeFilePath, language, cfg)
	if err != nil {
		return nil, err
	}

	results, err := r.combiner.Process(candidates, cfg)
	if err != nil {
		return nil, err
	}

	if len(results) > cfg.Output.MaxResults {
		results = results[:cfg.Output.MaxResults]
	}
	for _, res := range results {
		if res.FinalScore > 1 {
			res.FinalScore = 1
		}
		if res.FinalScore < 0 {
			res.FinalScore = 0
		}
	}

	r.logger.Debug("Search completed", map[string]interface{}{
		"queryId":    queryID,
		"candidates": len(matches),
		"results":    len(results),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return results, nil
}

// scoreCandidates computes the four component scores per candidate on a
// bounded worker pool. Scoring is independent per candidate; the pool
// collects everything before the combiner's whole-set stages run.
func (r *Retriever) scoreCandidates(
	ctx context.Context,
	matches []SemanticMatch,
	query, activeFilePath, language string,
	cfg *config.SearchConfig,
) ([]*SearchResult, error) {
	results := make([]*SearchResult, len(matches))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(matches) {
		workers = len(matches)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				m := matches[i]
				if m.Fragment == nil {
					continue
				}

				semantic := m.Similarity
				if semantic < 0 {
					semantic = tokenOverlapScore(query, m.Fragment.Content)
				}

				results[i] = &SearchResult{
					Fragment: m.Fragment,
					Scores: RelevanceScores{
						Semantic:   semantic,
						Temporal:   r.temporal.ScoreFragment(m.Fragment, cfg),
						Spatial:    r.spatial.Score(m.Fragment.FilePath, activeFilePath, cfg),
						Structural: r.structural.Score(m.Fragment, query, language, cfg),
					},
					modifiedAt: r.temporal.EffectiveLastModified(m.Fragment),
				}
			}
		}()
	}

	var sendErr error
	for i := range matches {
		select {
		case <-ctx.Done():
			sendErr = ctx.Err()
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if sendErr != nil {
		return nil, fmt.Errorf("query cancelled while scoring candidates: %w", sendErr)
	}

	out := make([]*SearchResult, 0, len(results))
	for _, res := range results {
		if res != nil {
			out = append(out, res)
		}
	}
	return out, nil
}

// tokenOverlapScore is the lexical fallback when the provider supplies
// no similarity: the fraction of query words that occur in the content.
func tokenOverlapScore(query, content string) float64 {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0
	}

	lowerContent := strings.ToLower(content)
	matched := 0
	for _, w := range words {
		if strings.Contains(lowerContent, w) {
			matched++
		}
	}

	return float64(matched) / float64(len(words))
}
