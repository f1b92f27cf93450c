// Package syntax highlights Python source for the terminal.
//
// Highlighting happens in three steps:
//   - Tokenize splits a single line into categorized spans.
//   - ColorBrackets assigns nesting depths to brackets across the whole buffer.
//   - Render combines both into styled lines that a Renderer turns into ANSI text.
//
// Every function here is pure; identical input always produces identical output.
package syntax

// Category is the lexical class of a span.
type Category int

const (
	Plain Category = iota
	Comment
	String
	Keyword
	Builtin
	Number
	Bracket
)

// String returns a lowercase name for the category.
func (c Category) String() string {
	switch c {
	case Plain:
		return "plain"
	case Comment:
		return "comment"
	case String:
		return "string"
	case Keyword:
		return "keyword"
	case Builtin:
		return "builtin"
	case Number:
		return "number"
	case Bracket:
		return "bracket"
	default:
		return "unknown"
	}
}

// Span is a categorized region of a line.
type Span struct {
	// Start is the starting byte offset within the line (0-indexed).
	Start int
	// End is the ending byte offset within the line (exclusive, like Go slices).
	End int
	// Text is line[Start:End].
	Text     string
	Category Category
}
