package retrieval

import (
	"io"
	"math"
	"testing"
	"time"

	"cre/internal/config"
	"cre/internal/errors"
	"cre/internal/fragment"
	"cre/internal/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Format: logging.JSONFormat,
		Output: io.Discard,
	})
}

// testCombiner returns a combiner with a fixed clock so recency boosts
// are deterministic.
func testCombiner(now time.Time) *Combiner {
	c := NewCombiner(newTestLogger())
	c.now = func() time.Time { return now }
	return c
}

// resultAt builds a result whose fragment was modified at the given
// time, with the combined score already copied to FinalScore.
func resultAt(id, path string, combined float64, modified time.Time) *SearchResult {
	return &SearchResult{
		Fragment: &fragment.CodeFragment{
			ID:       id,
			FilePath: path,
			Kind:     fragment.KindBlock,
			Content:  "plain();\ncontent();",
			Metadata: fragment.Metadata{LastModifiedAt: modified.UnixMilli()},
		},
		Scores:     RelevanceScores{Combined: combined},
		FinalScore: combined,
	}
}

func TestCombine_WeightSumInvariant(t *testing.T) {
	c := testCombiner(time.Now())

	tests := []struct {
		name    string
		weights config.WeightsConfig
		wantErr bool
	}{
		{"exact sum", config.WeightsConfig{Semantic: 0.4, Temporal: 0.2, Spatial: 0.25, Structural: 0.15}, false},
		{"within tolerance", config.WeightsConfig{Semantic: 0.4005, Temporal: 0.2, Spatial: 0.25, Structural: 0.15}, false},
		{"sum too low", config.WeightsConfig{Semantic: 0.3, Temporal: 0.2, Spatial: 0.25, Structural: 0.15}, true},
		{"sum too high", config.WeightsConfig{Semantic: 0.5, Temporal: 0.3, Spatial: 0.25, Structural: 0.15}, true},
		{"all zero", config.WeightsConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Weights = tt.weights

			scores := &RelevanceScores{Semantic: 0.5, Temporal: 0.5, Spatial: 0.5, Structural: 0.5}
			_, err := c.Combine(scores, cfg)

			if tt.wantErr {
				if !errors.IsCode(err, errors.InvalidConfiguration) {
					t.Errorf("Combine error = %v, want InvalidConfiguration", err)
				}
			} else if err != nil {
				t.Errorf("Combine unexpected error: %v", err)
			}
		})
	}
}

func TestCombine_SeparationTransform(t *testing.T) {
	c := testCombiner(time.Now())
	cfg := config.DefaultConfig()

	scores := &RelevanceScores{Semantic: 0.9, Temporal: 0.9, Spatial: 0.9, Structural: 0.9}
	got, err := c.Combine(scores, cfg)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	// Weighted raw is 0.9 for identical components; the power transform
	// lowers it to 0.9^1.5
	want := math.Pow(0.9, 1.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Combine = %v, want %v", got, want)
	}
	if scores.Combined != got {
		t.Errorf("Combined not stored: %v vs %v", scores.Combined, got)
	}
}

func TestCombine_Bounds(t *testing.T) {
	c := testCombiner(time.Now())
	cfg := config.DefaultConfig()

	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		scores := &RelevanceScores{Semantic: v, Temporal: v, Spatial: v, Structural: v}
		got, err := c.Combine(scores, cfg)
		if err != nil {
			t.Fatalf("Combine failed: %v", err)
		}
		if got < 0 || got > 1 {
			t.Errorf("Combine(%v) = %v, out of [0, 1]", v, got)
		}
	}
}

func TestCombine_RejectsInvalidComponents(t *testing.T) {
	c := testCombiner(time.Now())
	cfg := config.DefaultConfig()

	bad := []RelevanceScores{
		{Semantic: math.NaN(), Temporal: 0.5, Spatial: 0.5, Structural: 0.5},
		{Semantic: 0.5, Temporal: math.Inf(1), Spatial: 0.5, Structural: 0.5},
		{Semantic: 0.5, Temporal: 0.5, Spatial: -0.1, Structural: 0.5},
		{Semantic: 0.5, Temporal: 0.5, Spatial: 0.5, Structural: 1.1},
	}

	for _, scores := range bad {
		s := scores
		if _, err := c.Combine(&s, cfg); !errors.IsCode(err, errors.ScoringError) {
			t.Errorf("Combine(%+v) error = %v, want ScoringError", scores, err)
		}
	}
}

func TestNormalizeScores(t *testing.T) {
	c := testCombiner(time.Now())

	results := []*SearchResult{
		{Scores: RelevanceScores{Semantic: 0.2, Temporal: 0.5, Combined: 0.31}},
		{Scores: RelevanceScores{Semantic: 0.6, Temporal: 0.5, Combined: 0.52}},
		{Scores: RelevanceScores{Semantic: 1.0, Temporal: 0.5, Combined: 0.73}},
	}

	c.NormalizeScores(results)

	// Spread dimension maps to [0, 1]
	wantSemantic := []float64{0, 0.5, 1}
	for i, want := range wantSemantic {
		if got := results[i].Scores.Semantic; math.Abs(got-want) > 1e-9 {
			t.Errorf("Semantic[%d] = %v, want %v", i, got, want)
		}
	}

	// Degenerate dimension collapses to 0.5
	for i, r := range results {
		if r.Scores.Temporal != 0.5 {
			t.Errorf("Temporal[%d] = %v, want 0.5", i, r.Scores.Temporal)
		}
	}

	// Combined is untouched by normalization
	wantCombined := []float64{0.31, 0.52, 0.73}
	for i, want := range wantCombined {
		if results[i].Scores.Combined != want {
			t.Errorf("Combined[%d] = %v, want %v", i, results[i].Scores.Combined, want)
		}
	}
}

func TestRankResults_Contiguity(t *testing.T) {
	c := testCombiner(time.Now())
	old := time.Now().Add(-48 * time.Hour)

	results := []*SearchResult{
		resultAt("a", "a.go", 0.3, old),
		resultAt("b", "b.go", 0.9, old),
		resultAt("c", "c.go", 0.6, old),
		resultAt("d", "d.go", 0.6, old),
	}

	c.RankResults(results)

	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("Rank[%d] = %d, want %d", i, r.Rank, i+1)
		}
		if i > 0 && results[i-1].FinalScore < r.FinalScore {
			t.Errorf("Results not sorted descending at %d", i)
		}
	}
	if results[0].Fragment.ID != "b" {
		t.Errorf("Top result = %s, want b", results[0].Fragment.ID)
	}
	// Equal scores keep their original relative order (stable sort)
	if results[1].Fragment.ID != "c" || results[2].Fragment.ID != "d" {
		t.Errorf("Tie order not stable: %s, %s", results[1].Fragment.ID, results[2].Fragment.ID)
	}
}

func TestDiversityPenalty(t *testing.T) {
	now := time.Now()
	c := testCombiner(now)
	old := now.Add(-48 * time.Hour)

	results := make([]*SearchResult, 5)
	for i := range results {
		results[i] = resultAt(string(rune('a'+i)), "hot.go", 0.8, old)
	}

	c.applyDiversityPenalty(results)

	// First three keep their score, the overflow is multiplied by
	// 1 - (5-3)*0.1 = 0.8
	for i := 0; i < 3; i++ {
		if results[i].FinalScore != 0.8 {
			t.Errorf("Result %d penalized inside free window: %v", i, results[i].FinalScore)
		}
	}
	for i := 3; i < 5; i++ {
		want := 0.8 * 0.8
		if math.Abs(results[i].FinalScore-want) > 1e-9 {
			t.Errorf("Result %d = %v, want %v", i, results[i].FinalScore, want)
		}
		if results[i].FinalScore > 0.9*results[0].FinalScore {
			t.Errorf("Overflow result %d not penalized by at least 0.9 relative to the window", i)
		}
	}
}

func TestDiversityPenalty_Floor(t *testing.T) {
	c := testCombiner(time.Now())
	old := time.Now().Add(-48 * time.Hour)

	// 10 results from one file: 1 - 7*0.1 = 0.3 bottoms out at 0.7
	results := make([]*SearchResult, 10)
	for i := range results {
		results[i] = resultAt(string(rune('a'+i)), "hot.go", 1.0, old)
	}

	c.applyDiversityPenalty(results)

	if got := results[9].FinalScore; math.Abs(got-0.7) > 1e-9 {
		t.Errorf("Floored penalty = %v, want 0.7", got)
	}
}

func TestRecencyBoost(t *testing.T) {
	now := time.Now()
	c := testCombiner(now)
	cfg := config.DefaultConfig()

	fresh := resultAt("fresh", "a.go", 0.5, now)
	halfway := resultAt("halfway", "b.go", 0.5, now.Add(-cfg.Temporal.RecentBonus()/2))
	stale := resultAt("stale", "c.go", 0.5, now.Add(-72*time.Hour))

	c.applyRecencyBoost([]*SearchResult{fresh, halfway, stale}, cfg)

	if math.Abs(fresh.FinalScore-0.5*1.2) > 1e-9 {
		t.Errorf("Fresh boost = %v, want %v", fresh.FinalScore, 0.5*1.2)
	}
	if math.Abs(halfway.FinalScore-0.5*1.1) > 1e-6 {
		t.Errorf("Halfway boost = %v, want %v", halfway.FinalScore, 0.5*1.1)
	}
	if stale.FinalScore != 0.5 {
		t.Errorf("Stale result boosted: %v", stale.FinalScore)
	}
}

func TestRecencyBoost_UsesNotifiedTimestamp(t *testing.T) {
	now := time.Now()
	c := testCombiner(now)
	cfg := config.DefaultConfig()

	// Extraction metadata is days old, but a live notification marked
	// the file just-modified; the boost follows the newer timestamp,
	// matching the temporal component.
	notified := resultAt("notified", "a.go", 0.5, now.Add(-72*time.Hour))
	notified.modifiedAt = now

	unnotified := resultAt("unnotified", "b.go", 0.5, now.Add(-72*time.Hour))

	c.applyRecencyBoost([]*SearchResult{notified, unnotified}, cfg)

	if math.Abs(notified.FinalScore-0.5*1.2) > 1e-9 {
		t.Errorf("Notified boost = %v, want %v", notified.FinalScore, 0.5*1.2)
	}
	if unnotified.FinalScore != 0.5 {
		t.Errorf("Unnotified result boosted: %v", unnotified.FinalScore)
	}
}

func TestQualityBoost_Compounds(t *testing.T) {
	c := testCombiner(time.Now())
	old := time.Now().Add(-48 * time.Hour)

	plain := resultAt("plain", "a.go", 0.5, old)

	quality := resultAt("quality", "b.go", 0.5, old)
	quality.Fragment.Metadata.Exports = []string{"ParseConfig"}
	quality.Fragment.Metadata.Complexity = 5
	quality.Fragment.Content = "// ParseConfig reads settings.\nfunc ParseConfig() {}"

	c.applyQualityBoost([]*SearchResult{plain, quality})

	want := 0.5 * 1.1 * 1.05 * 1.05
	if math.Abs(quality.FinalScore-want) > 1e-9 {
		t.Errorf("Quality boost = %v, want %v", quality.FinalScore, want)
	}
	if plain.FinalScore != 0.5 {
		t.Errorf("Plain result boosted: %v", plain.FinalScore)
	}
}

func TestFilterResults_SemanticThreshold(t *testing.T) {
	c := testCombiner(time.Now())
	cfg := config.DefaultConfig()
	old := time.Now().Add(-48 * time.Hour)

	weak := resultAt("weak", "a.go", 0.9, old)
	weak.Scores.Semantic = 0.1
	strong := resultAt("strong", "b.go", 0.9, old)
	strong.Scores.Semantic = 0.8

	kept := c.FilterResults([]*SearchResult{weak, strong}, cfg)

	if len(kept) != 1 || kept[0].Fragment.ID != "strong" {
		t.Fatalf("FilterResults kept %d results, want only the strong one", len(kept))
	}
}

func TestFilterResults_UsesRawSemantic(t *testing.T) {
	now := time.Now()
	c := testCombiner(now)
	cfg := config.DefaultConfig()
	old := now.Add(-48 * time.Hour)

	// A single weak candidate: normalization would rewrite its semantic
	// component to 0.5, which must not rescue it from the threshold.
	weak := resultAt("weak", "a.go", 0.9, old)
	weak.Scores = RelevanceScores{Semantic: 0.1, Temporal: 0.5, Spatial: 0.5, Structural: 0.5}

	kept, err := c.Process([]*SearchResult{weak}, cfg)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(kept) != 0 {
		t.Errorf("Weak semantic candidate survived: %+v", kept[0].Scores)
	}
}

func TestProcess_DropsInvalidCandidate(t *testing.T) {
	now := time.Now()
	c := testCombiner(now)
	cfg := config.DefaultConfig()
	old := now.Add(-48 * time.Hour)

	good := resultAt("good", "a.go", 0, old)
	good.Scores = RelevanceScores{Semantic: 0.9, Temporal: 0.5, Spatial: 0.5, Structural: 0.5}

	broken := resultAt("broken", "b.go", 0, old)
	broken.Scores = RelevanceScores{Semantic: math.NaN(), Temporal: 0.5, Spatial: 0.5, Structural: 0.5}

	kept, err := c.Process([]*SearchResult{good, broken}, cfg)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(kept) != 1 || kept[0].Fragment.ID != "good" {
		t.Fatalf("Expected only the good candidate to survive, got %d", len(kept))
	}
	if kept[0].Rank != 1 {
		t.Errorf("Rank = %d, want 1", kept[0].Rank)
	}
}

func TestProcess_InvalidWeightsAbort(t *testing.T) {
	c := testCombiner(time.Now())
	cfg := config.DefaultConfig()
	cfg.Weights.Semantic = 0.9

	_, err := c.Process([]*SearchResult{resultAt("a", "a.go", 0, time.Now())}, cfg)
	if !errors.IsCode(err, errors.InvalidConfiguration) {
		t.Errorf("Process error = %v, want InvalidConfiguration", err)
	}
}
