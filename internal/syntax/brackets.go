package syntax

// BracketState is the accumulator threaded through a bracket colouring pass.
// A pass starts from the zero value.
type BracketState struct {
	Depth int
}

// Step advances the state over one byte. For a bracket it returns the depth
// the bracket is drawn at: openers use the depth before incrementing, closers
// the depth after decrementing, so a matched pair shares a depth. Depth never
// drops below zero.
func (s BracketState) Step(ch byte) (depth int, isBracket bool, next BracketState) {
	switch ch {
	case '(', '[', '{':
		return s.Depth, true, BracketState{Depth: s.Depth + 1}
	case ')', ']', '}':
		d := max(s.Depth-1, 0)
		return d, true, BracketState{Depth: d}
	default:
		return 0, false, s
	}
}

// BracketAssignment maps the byte offset of each bracket to a palette index.
type BracketAssignment map[int]int

// ColorBrackets assigns every bracket outside strings and comments a palette
// index in [0, paletteSize), keyed by its byte offset in text. Depth carries
// across newlines. It walks the same fold as Render, so both agree on depths.
func ColorBrackets(text string, paletteSize int) (BracketAssignment, BracketState) {
	if paletteSize <= 0 {
		paletteSize = len(DefaultPalette)
	}

	lines, state := render(text, nil)
	assigned := BracketAssignment{}
	offset := 0
	for _, line := range lines {
		for _, sp := range line.Spans {
			if sp.Category == Bracket {
				assigned[offset] = sp.Depth % paletteSize
			}
			offset += len(sp.Text)
		}
		offset++ // newline
	}
	return assigned, state
}
