package retrieval

import (
	"math"
	"sort"
	"time"

	"cre/internal/config"
	"cre/internal/errors"
	"cre/internal/logging"
	"cre/internal/structural"
)

// Boost and penalty policy. Boosts multiply FinalScore and may push it
// past 1.0 until the final clamp.
const (
	// separationExponent spreads high combined scores apart without
	// reordering them
	separationExponent = 1.5

	// diversityFreeResults is how many results one file contributes
	// before the diversity penalty starts
	diversityFreeResults = 3
	// diversityStep is the penalty added per result past the free count
	diversityStep = 0.1
	// diversityFloor bounds the penalty multiplier from below
	diversityFloor = 0.7

	// recencyBoostMax scales the boost for just-modified fragments
	recencyBoostMax = 0.2

	// Quality boost multipliers
	exportBoost        = 1.1
	documentationBoost = 1.05
	complexityBoost    = 1.05

	// Complexity band rewarded by the quality boost
	qualityComplexityMin = 3
	qualityComplexityMax = 8
)

// Combiner fuses component scores and runs the whole-set ranking
// pipeline: combine, normalize, boost, filter, rank.
type Combiner struct {
	logger *logging.Logger

	// now is replaceable in tests
	now func() time.Time
}

// NewCombiner creates a score combiner.
func NewCombiner(logger *logging.Logger) *Combiner {
	return &Combiner{logger: logger, now: time.Now}
}

// Combine validates the weights and components, fuses the four signals,
// applies the separation transform, and writes the result into
// scores.Combined. Weight violations are the caller's bug and surface
// as InvalidConfiguration; a bad component score is a per-candidate
// ScoringError.
func (c *Combiner) Combine(scores *RelevanceScores, cfg *config.SearchConfig) (float64, error) {
	if err := validateWeights(cfg); err != nil {
		return 0, err
	}

	if !scores.valid() {
		return 0, errors.New(errors.ScoringError, "combiner.combine",
			"component score is non-finite or out of [0, 1]").WithDetails(*scores)
	}

	w := cfg.Weights
	raw := scores.Semantic*w.Semantic +
		scores.Temporal*w.Temporal +
		scores.Spatial*w.Spatial +
		scores.Structural*w.Structural

	enhanced := math.Pow(raw, separationExponent)
	if enhanced < 0 {
		enhanced = 0
	}
	if enhanced > 1 {
		enhanced = 1
	}

	scores.Combined = enhanced
	return enhanced, nil
}

// validateWeights checks the weight-sum precondition.
func validateWeights(cfg *config.SearchConfig) error {
	sum := cfg.Weights.Sum()
	if math.IsNaN(sum) || math.Abs(sum-1.0) > config.WeightSumTolerance {
		return errors.New(errors.InvalidConfiguration, "combiner.weights",
			"scoring weights must sum to 1.0").WithDetails(map[string]float64{"sum": sum})
	}
	return nil
}

// NormalizeScores rewrites each component dimension via min-max
// normalization across the result set. This runs after combination and
// only affects the displayed breakdown (and any later re-combination);
// Combined stays authoritative for the rest of the pipeline.
func (c *Combiner) NormalizeScores(results []*SearchResult) {
	if len(results) == 0 {
		return
	}

	normalizeComponent(results,
		func(s *RelevanceScores) float64 { return s.Semantic },
		func(s *RelevanceScores, v float64) { s.Semantic = v })
	normalizeComponent(results,
		func(s *RelevanceScores) float64 { return s.Temporal },
		func(s *RelevanceScores, v float64) { s.Temporal = v })
	normalizeComponent(results,
		func(s *RelevanceScores) float64 { return s.Spatial },
		func(s *RelevanceScores, v float64) { s.Spatial = v })
	normalizeComponent(results,
		func(s *RelevanceScores) float64 { return s.Structural },
		func(s *RelevanceScores, v float64) { s.Structural = v })
}

func normalizeComponent(results []*SearchResult, get func(*RelevanceScores) float64, set func(*RelevanceScores, float64)) {
	minVal := get(&results[0].Scores)
	maxVal := minVal
	for _, r := range results[1:] {
		v := get(&r.Scores)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal == minVal {
		// Degenerate single-valued distribution
		for _, r := range results {
			set(&r.Scores, 0.5)
		}
		return
	}

	for _, r := range results {
		set(&r.Scores, (get(&r.Scores)-minVal)/(maxVal-minVal))
	}
}

// ApplyAdvancedScoring applies the three multiplicative adjustments in
// order: diversity penalty, recency boost, quality boost.
func (c *Combiner) ApplyAdvancedScoring(results []*SearchResult, cfg *config.SearchConfig) {
	c.applyDiversityPenalty(results)
	c.applyRecencyBoost(results, cfg)
	c.applyQualityBoost(results)
}

// applyDiversityPenalty down-weights results from a file that
// contributes more than diversityFreeResults, so one file cannot crowd
// out the rest of the top-K. The file's first results inside the free
// window keep their scores; every result past it is penalized by the
// file's oversupply.
func (c *Combiner) applyDiversityPenalty(results []*SearchResult) {
	perFile := make(map[string]int, len(results))
	for _, r := range results {
		perFile[r.Fragment.FilePath]++
	}

	seen := make(map[string]int, len(perFile))
	for _, r := range results {
		path := r.Fragment.FilePath
		seen[path]++
		count := perFile[path]
		if count <= diversityFreeResults || seen[path] <= diversityFreeResults {
			continue
		}
		penalty := 1 - float64(count-diversityFreeResults)*diversityStep
		if penalty < diversityFloor {
			penalty = diversityFloor
		}
		r.FinalScore *= penalty
	}
}

// applyRecencyBoost reinforces fragments modified inside the recency
// window. The boost scales down linearly as age approaches the window
// edge and never penalizes. Age comes from the same effective timestamp
// the temporal score used, so a live notification boosts too.
func (c *Combiner) applyRecencyBoost(results []*SearchResult, cfg *config.SearchConfig) {
	window := cfg.Temporal.RecentBonus()
	if window <= 0 {
		return
	}

	now := c.now().UTC()
	for _, r := range results {
		modified := r.modifiedAt
		if modified.IsZero() {
			modified = r.Fragment.LastModified()
		}
		age := now.Sub(modified)
		if age < 0 {
			age = 0
		}
		if age >= window {
			continue
		}
		boost := 1 + recencyBoostMax*(1-age.Seconds()/window.Seconds())
		r.FinalScore *= boost
	}
}

// applyQualityBoost rewards fragments that declare exports, carry
// documentation, or sit in the moderate complexity band. The three
// boosts are independent and compound.
func (c *Combiner) applyQualityBoost(results []*SearchResult) {
	for _, r := range results {
		frag := r.Fragment
		if frag.HasExports() {
			r.FinalScore *= exportBoost
		}
		if structural.HasDocumentation(frag.Content) {
			r.FinalScore *= documentationBoost
		}

		complexity := frag.Metadata.Complexity
		if complexity == 0 {
			complexity = structural.EstimateComplexity(frag.Content)
		}
		if complexity >= qualityComplexityMin && complexity <= qualityComplexityMax {
			r.FinalScore *= complexityBoost
		}
	}
}

// FilterResults drops results below the semantic threshold or the final
// score floor. Boosts have already run, so a boosted borderline result
// can survive the final-score check but a weak semantic match cannot be
// rescued.
func (c *Combiner) FilterResults(results []*SearchResult, cfg *config.SearchConfig) []*SearchResult {
	out := results[:0]
	for _, r := range results {
		semantic := r.Scores.Semantic
		if r.hasRawSemantic {
			semantic = r.rawSemantic
		}
		if semantic < cfg.Output.MinSemanticThreshold {
			continue
		}
		if r.FinalScore < cfg.Output.MinFinalScore {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RankResults stable-sorts by FinalScore descending and assigns 1-based
// ranks. It must run last so the surviving set is numbered contiguously.
func (c *Combiner) RankResults(results []*SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	for i, r := range results {
		r.Rank = i + 1
	}
}

// Process runs the full pipeline over scored candidates: combine each,
// normalize components, apply boosts, filter, and rank. Candidates with
// invalid component scores are dropped individually; a weight violation
// aborts the whole call.
func (c *Combiner) Process(results []*SearchResult, cfg *config.SearchConfig) ([]*SearchResult, error) {
	if err := validateWeights(cfg); err != nil {
		return nil, err
	}

	kept := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if _, err := c.Combine(&r.Scores, cfg); err != nil {
			if errors.IsCode(err, errors.ScoringError) {
				c.logger.Warn("Dropping candidate with invalid component score", map[string]interface{}{
					"fragment": r.Fragment.ID,
					"error":    err.Error(),
				})
				continue
			}
			return nil, err
		}
		r.FinalScore = r.Scores.Combined
		r.rawSemantic = r.Scores.Semantic
		r.hasRawSemantic = true
		kept = append(kept, r)
	}

	c.NormalizeScores(kept)
	c.ApplyAdvancedScoring(kept, cfg)
	kept = c.FilterResults(kept, cfg)
	c.RankResults(kept)

	return kept, nil
}
