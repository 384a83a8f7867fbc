// Package fragment defines the code fragment model that flows through the
// retrieval pipeline. Fragments are produced by an upstream extraction layer
// and are treated as immutable: scoring never mutates them.
package fragment

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies what a code fragment represents.
type Kind string

const (
	// KindFunction is a function or method definition
	KindFunction Kind = "function"
	// KindClass is a class or struct definition
	KindClass Kind = "class"
	// KindInterface is an interface definition
	KindInterface Kind = "interface"
	// KindType is a named type or type alias
	KindType Kind = "type"
	// KindVariable is a variable or constant declaration
	KindVariable Kind = "variable"
	// KindImport is an import or include statement
	KindImport Kind = "import"
	// KindComment is a standalone comment block
	KindComment Kind = "comment"
	// KindBlock is an unclassified span of code
	KindBlock Kind = "block"
)

// Kinds lists all valid fragment kinds.
var Kinds = []Kind{
	KindFunction, KindClass, KindInterface, KindType,
	KindVariable, KindImport, KindComment, KindBlock,
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFunction, KindClass, KindInterface, KindType,
		KindVariable, KindImport, KindComment, KindBlock:
		return true
	}
	return false
}

// ParseKind converts a kind name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown fragment kind: %q", s)
	}
	return k, nil
}

// Metadata carries optional enrichment attached to a fragment.
type Metadata struct {
	// FunctionName is the declared function name, when Kind is function
	FunctionName string `json:"functionName,omitempty"`

	// ClassName is the declared class name, when Kind is class
	ClassName string `json:"className,omitempty"`

	// Imports are module/package names the fragment imports
	Imports []string `json:"imports,omitempty"`

	// Exports are symbol names the fragment exports
	Exports []string `json:"exports,omitempty"`

	// Complexity is a precomputed complexity estimate. Zero means
	// not computed; scorers estimate from content in that case.
	Complexity int `json:"complexity,omitempty"`

	// LastModifiedAt is the modification time in epoch milliseconds.
	// Zero is treated as the epoch, which scores at the staleness floor.
	LastModifiedAt int64 `json:"lastModifiedAt"`
}

// CodeFragment is a contiguous span of source code with location and
// classification metadata.
type CodeFragment struct {
	ID        string   `json:"id"`
	FilePath  string   `json:"filePath"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Language  string   `json:"language"`
	Content   string   `json:"content"`
	Kind      Kind     `json:"kind"`
	Metadata  Metadata `json:"metadata"`
}

// LastModified returns the fragment's modification time. A missing
// timestamp maps to the epoch.
func (f *CodeFragment) LastModified() time.Time {
	return time.UnixMilli(f.Metadata.LastModifiedAt).UTC()
}

// SymbolName returns the declared name for the fragment: the function
// name for functions, the class name for classes, empty otherwise.
func (f *CodeFragment) SymbolName() string {
	if f.Metadata.FunctionName != "" {
		return f.Metadata.FunctionName
	}
	return f.Metadata.ClassName
}

// HasExports reports whether the fragment exports any symbols.
func (f *CodeFragment) HasExports() bool {
	return len(f.Metadata.Exports) > 0
}

// LineCount returns the number of lines the fragment spans.
func (f *CodeFragment) LineCount() int {
	if f.EndLine < f.StartLine {
		return 0
	}
	return f.EndLine - f.StartLine + 1
}
