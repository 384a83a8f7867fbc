// Package structural scores code fragments by their shape: declaration
// kind, complexity, export surface, documentation, and how well the
// query's wording lines up with the fragment's symbols.
package structural

import (
	"strings"

	"cre/internal/config"
	"cre/internal/fragment"
	"cre/internal/logging"
)

const (
	// baseScore is the starting point before bonuses
	baseScore = 0.5
	// floorScore keeps weak fragments discoverable
	floorScore = 0.1
	// maxQueryAffinity caps the total query-to-fragment affinity bonus
	maxQueryAffinity = 0.3
)

// Analyzer scores fragments structurally and answers symbol lookups
// against fragments it has seen.
type Analyzer struct {
	logger  *logging.Logger
	symbols *SymbolCache
}

// NewAnalyzer creates a structural analyzer.
func NewAnalyzer(logger *logging.Logger) *Analyzer {
	return &Analyzer{
		logger:  logger,
		symbols: NewSymbolCache(),
	}
}

// Symbols returns the analyzer's symbol-lookup cache.
func (a *Analyzer) Symbols() *SymbolCache {
	return a.symbols
}

// Score computes the structural relevance of a fragment for a query.
// currentLanguage is the language the caller is working in and may be
// empty. The result is additive from a neutral base and clamped to
// [0.1, 1.0].
func (a *Analyzer) Score(frag *fragment.CodeFragment, query, currentLanguage string, cfg *config.SearchConfig) float64 {
	score := baseScore

	if currentLanguage != "" && strings.EqualFold(frag.Language, currentLanguage) {
		score += cfg.Structural.SameLanguageBonus
	}

	score += kindBonus(frag.Kind, cfg)
	score += complexityBonus(a.Complexity(frag))

	if frag.HasExports() {
		score += 0.1
	}
	if HasDocumentation(frag.Content) {
		score += 0.1
	}

	score += a.queryAffinity(frag, query)

	if name := frag.SymbolName(); name != "" {
		a.symbols.Record(name, frag)
	}

	if score < floorScore {
		return floorScore
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Complexity returns the fragment's complexity, estimating it from the
// content when the metadata does not carry a precomputed value.
func (a *Analyzer) Complexity(frag *fragment.CodeFragment) int {
	if frag.Metadata.Complexity > 0 {
		return frag.Metadata.Complexity
	}
	return EstimateComplexity(frag.Content)
}

// kindBonus rewards declaration kinds that tend to carry meaning for a
// reader. The switch is exhaustive over fragment.Kinds.
func kindBonus(kind fragment.Kind, cfg *config.SearchConfig) float64 {
	switch kind {
	case fragment.KindFunction:
		return cfg.Structural.FunctionTypeBonus
	case fragment.KindClass:
		return cfg.Structural.ClassTypeBonus
	case fragment.KindInterface:
		return 0.15
	case fragment.KindType:
		return 0.10
	case fragment.KindVariable:
		return 0.05
	case fragment.KindImport, fragment.KindComment, fragment.KindBlock:
		return 0
	}
	return 0
}

// complexityBonus prefers moderate complexity. Trivial fragments carry
// little signal and very complex ones make poor context.
func complexityBonus(complexity int) float64 {
	switch {
	case complexity < 2:
		return 0.05
	case complexity <= 5:
		return 0.15
	case complexity <= 10:
		return 0.10
	default:
		return 0.05
	}
}

// queryAffinity measures how directly the query asks for this fragment:
// naming its kind, its declared symbol, its language, or words found in
// its content. Capped so affinity cannot dominate the other signals.
func (a *Analyzer) queryAffinity(frag *fragment.CodeFragment, query string) float64 {
	if query == "" {
		return 0
	}

	lowerQuery := strings.ToLower(query)
	affinity := 0.0

	if mentionsKind(lowerQuery, frag.Kind) {
		affinity += 0.2
	}

	symbolName := strings.ToLower(frag.SymbolName())
	lowerContent := strings.ToLower(frag.Content)
	for _, token := range SymbolTokens(query) {
		lowerToken := strings.ToLower(token)
		if symbolName != "" && strings.Contains(symbolName, lowerToken) {
			affinity += 0.15
		} else if strings.Contains(lowerContent, lowerToken) {
			affinity += 0.1
		}
	}

	if frag.Language != "" && containsWord(lowerQuery, strings.ToLower(frag.Language)) {
		affinity += 0.15
	}

	if affinity > maxQueryAffinity {
		return maxQueryAffinity
	}
	return affinity
}

// kindSynonyms maps each kind to the words a user might use for it.
var kindSynonyms = map[fragment.Kind][]string{
	fragment.KindFunction:  {"function", "func", "method"},
	fragment.KindClass:     {"class", "struct"},
	fragment.KindInterface: {"interface"},
	fragment.KindType:      {"type"},
	fragment.KindVariable:  {"variable", "const", "constant"},
	fragment.KindImport:    {"import"},
	fragment.KindComment:   {"comment"},
	fragment.KindBlock:     {"block"},
}

func mentionsKind(lowerQuery string, kind fragment.Kind) bool {
	for _, word := range kindSynonyms[kind] {
		if containsWord(lowerQuery, word) {
			return true
		}
	}
	return false
}

// containsWord reports whether s contains word bounded by non-letter
// characters, so "go" does not match inside "golang" backwards.
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end == len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
