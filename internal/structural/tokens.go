package structural

import (
	"regexp"
	"strings"
)

// symbolWord matches identifier-shaped words: camelCase, PascalCase,
// snake_case, or plain alphanumerics of useful length.
var symbolWord = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]{2,}`)

// queryStopWords are words too generic to treat as symbol candidates.
var queryStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "how": true, "does": true, "where": true, "what": true,
	"find": true, "show": true, "all": true, "get": true, "from": true,
	"function": true, "class": true, "interface": true, "type": true,
	"variable": true, "method": true, "struct": true, "code": true,
}

// SymbolTokens extracts likely symbol names from a query. Identifier-
// shaped words survive; filler words and kind names are dropped since
// the kind bonus accounts for those separately.
func SymbolTokens(query string) []string {
	words := symbolWord.FindAllString(query, -1)
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if queryStopWords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, w)
	}
	return out
}

// SplitIdentifier breaks an identifier into its camelCase, PascalCase,
// and snake_case parts, lowercased. "parseConfig" yields ["parse",
// "config"].
func SplitIdentifier(ident string) []string {
	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for i, r := range ident {
		switch {
		case r == '_' || r == '-':
			flush()
		case r >= 'A' && r <= 'Z':
			// A lowercase-to-uppercase transition starts a new part
			if i > 0 && current.Len() > 0 {
				prev := rune(ident[i-1])
				if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
					flush()
				}
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return parts
}
