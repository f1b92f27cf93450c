package syntax

import (
	"slices"
	"strings"
)

// StyledSpan is a run of text with a category. Brackets are always their own
// span with Category Bracket and Depth set; Depth is -1 for everything else.
type StyledSpan struct {
	Text     string
	Category Category
	Depth    int
}

// Line is one rendered buffer line.
type Line struct {
	// Number is the 1-based line number.
	Number int
	Spans  []StyledSpan
	// Error is set when Number was flagged by the last verdict.
	Error bool
}

// Text returns the line's source text.
func (l Line) Text() string {
	var b strings.Builder
	for _, sp := range l.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Render tokenizes every line of buffer and overlays bracket depths on the
// plain spans. Bracket depth is carried across lines; brackets inside strings
// and comments keep their token category.
func Render(buffer string, errorLines []int) []Line {
	lines, _ := render(buffer, errorLines)
	return lines
}

func render(buffer string, errorLines []int) ([]Line, BracketState) {
	rawLines := strings.Split(buffer, "\n")
	out := make([]Line, 0, len(rawLines))

	var state BracketState
	for i, text := range rawLines {
		line := Line{
			Number: i + 1,
			Error:  slices.Contains(errorLines, i+1),
		}
		for _, sp := range Tokenize(text) {
			if sp.Category != Plain {
				line.Spans = append(line.Spans, StyledSpan{Text: sp.Text, Category: sp.Category, Depth: -1})
				continue
			}
			var styled []StyledSpan
			styled, state = overlayBrackets(sp.Text, state)
			line.Spans = append(line.Spans, styled...)
		}
		out = append(out, line)
	}
	return out, state
}

func overlayBrackets(text string, state BracketState) ([]StyledSpan, BracketState) {
	var spans []StyledSpan
	last := 0
	for i := 0; i < len(text); i++ {
		depth, ok, next := state.Step(text[i])
		state = next
		if !ok {
			continue
		}
		if i > last {
			spans = append(spans, StyledSpan{Text: text[last:i], Category: Plain, Depth: -1})
		}
		spans = append(spans, StyledSpan{Text: text[i : i+1], Category: Bracket, Depth: depth})
		last = i + 1
	}
	if last < len(text) {
		spans = append(spans, StyledSpan{Text: text[last:], Category: Plain, Depth: -1})
	}
	return spans, state
}
