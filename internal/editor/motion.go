package editor

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Insert replaces sel with s, normalizing line endings in s, and places the
// caret after the inserted text.
func Insert(text string, sel Selection, s string) Result {
	return replace(text, clamp(sel, len(text)), Normalize(s))
}

// Delete removes the grapheme cluster after caret.
func Delete(text string, caret int) Result {
	caret = clampOffset(caret, len(text))
	return replace(text, Selection{Start: caret, End: Right(text, caret)}, "")
}

// Left moves caret back over one grapheme cluster.
func Left(text string, caret int) int {
	caret = clampOffset(caret, len(text))
	if caret == 0 {
		return 0
	}
	return caret - lastClusterLen(text[:caret])
}

// Right moves caret forward over one grapheme cluster.
func Right(text string, caret int) int {
	caret = clampOffset(caret, len(text))
	if caret == len(text) {
		return caret
	}
	g := uniseg.NewGraphemes(text[caret:])
	if g.Next() {
		from, to := g.Positions()
		if to > from {
			return caret + to - from
		}
	}
	return caret + 1
}

// Home moves caret to the start of its line.
func Home(text string, caret int) int {
	return lineStart(text, clampOffset(caret, len(text)))
}

// End moves caret to the end of its line.
func End(text string, caret int) int {
	caret = clampOffset(caret, len(text))
	if i := strings.IndexByte(text[caret:], '\n'); i >= 0 {
		return caret + i
	}
	return len(text)
}

// Vertical moves caret delta lines down (up when negative), keeping its
// column in grapheme clusters or stopping at the end of a shorter line.
// Moving past the first or last line leaves the caret where it is.
func Vertical(text string, caret, delta int) int {
	caret = clampOffset(caret, len(text))
	lines := Lines(text)
	line, col := LineAt(text, caret)

	target := line - 1 + delta
	if delta == 0 || target < 0 || target >= len(lines) {
		return caret
	}

	cells := uniseg.GraphemeClusterCount(lines[line-1][:col])
	offset := 0
	for _, l := range lines[:target] {
		offset += len(l) + 1
	}

	g := uniseg.NewGraphemes(lines[target])
	pos := 0
	for i := 0; i < cells && g.Next(); i++ {
		_, pos = g.Positions()
	}
	return offset + pos
}

func clampOffset(offset, n int) int {
	return min(max(offset, 0), n)
}
