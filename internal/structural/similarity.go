package structural

import (
	"math"

	"cre/internal/fragment"
)

// Similarity weights. They sum to 1.0 so the comparator stays in [0, 1].
const (
	simKindWeight       = 0.30
	simLanguageWeight   = 0.20
	simComplexityWeight = 0.20
	simExportWeight     = 0.10
	simImportWeight     = 0.10
	simDocWeight        = 0.10
)

// Similarity compares two fragments structurally: matching kind and
// language, close complexity, and parity of exports, imports, and
// documentation. 1.0 means structurally alike, 0 means nothing in
// common. Useful for "find fragments like this one".
func (a *Analyzer) Similarity(x, y *fragment.CodeFragment) float64 {
	if x == nil || y == nil {
		return 0
	}

	score := 0.0

	if x.Kind == y.Kind {
		score += simKindWeight
	}
	if x.Language != "" && x.Language == y.Language {
		score += simLanguageWeight
	}

	score += simComplexityWeight * complexityCloseness(a.Complexity(x), a.Complexity(y))

	if x.HasExports() == y.HasExports() {
		score += simExportWeight
	}
	if (len(x.Metadata.Imports) > 0) == (len(y.Metadata.Imports) > 0) {
		score += simImportWeight
	}
	if HasDocumentation(x.Content) == HasDocumentation(y.Content) {
		score += simDocWeight
	}

	return score
}

// complexityCloseness maps the complexity gap to [0, 1]: identical
// complexity scores 1, a gap as large as the bigger value scores 0.
func complexityCloseness(a, b int) float64 {
	larger := math.Max(float64(a), float64(b))
	if larger == 0 {
		return 1
	}
	gap := math.Abs(float64(a) - float64(b))
	closeness := 1 - gap/larger
	if closeness < 0 {
		return 0
	}
	return closeness
}
