package structural

import "regexp"

// Control-flow markers counted by the estimator. Keyword matches are
// word-bounded so identifiers like "iffy" do not count.
var (
	branchKeywords = regexp.MustCompile(`\b(if|for|while|switch|catch)\b`)
	logicalOps     = regexp.MustCompile(`&&|\|\|`)
	ternaryOp      = regexp.MustCompile(`\?`)
)

// EstimateComplexity approximates cyclomatic complexity by counting
// branching constructs in raw source text: one base path plus one per
// control-flow keyword, logical operator, or ternary. Language-agnostic
// on purpose; fragments arrive in arbitrary languages.
func EstimateComplexity(content string) int {
	if content == "" {
		return 1
	}

	count := 1
	count += len(branchKeywords.FindAllStringIndex(content, -1))
	count += len(logicalOps.FindAllStringIndex(content, -1))
	count += len(ternaryOp.FindAllStringIndex(content, -1))
	return count
}

// Doc-comment conventions recognized by HasDocumentation. Two distinct
// conventions are enough to call a fragment documented in mixed-language
// corpora: C-family doc blocks and line doc comments, plus hash and
// triple-quote styles.
var docPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/\*\*`),            // JSDoc / Javadoc block
	regexp.MustCompile(`(?m)^\s*///\s+\S`), // Rust / C# doc line
	regexp.MustCompile(`(?m)^\s*//\s\S`),   // plain line comment with text
	regexp.MustCompile(`(?m)^\s*#\s\S`),    // hash comment with text
	regexp.MustCompile(`"""|'''`),          // Python docstring
}

// HasDocumentation reports whether the fragment text carries doc-comment
// markers in any recognized convention.
func HasDocumentation(content string) bool {
	for _, p := range docPatterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}
