package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Renderer turns rendered lines into terminal text.
type Renderer struct {
	Theme Theme
	// Gutter prefixes every line with its number. Error lines get a marker.
	Gutter bool
}

// NewRenderer returns a Renderer using DefaultTheme with the gutter on.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme(), Gutter: true}
}

// Highlight renders buffer with the given error lines flagged.
func (r *Renderer) Highlight(buffer string, errorLines []int) string {
	return r.Format(Render(buffer, errorLines))
}

// Format draws already rendered lines.
func (r *Renderer) Format(lines []Line) string {
	return r.format(lines, 0, 0)
}

// FormatCursor draws lines like Format with a block cursor at byte column col
// of the 1-based line number.
func (r *Renderer) FormatCursor(lines []Line, line, col int) string {
	return r.format(lines, line, col)
}

func (r *Renderer) format(lines []Line, cursorLine, cursorCol int) string {
	width := 0
	if r.Gutter && len(lines) > 0 {
		width = runewidth.StringWidth(strconv.Itoa(lines[len(lines)-1].Number))
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.Gutter {
			b.WriteString(r.gutter(line, width))
		}
		if line.Number == cursorLine {
			r.writeCursorLine(&b, line, cursorCol)
			continue
		}
		for _, sp := range line.Spans {
			r.writeSpan(&b, sp, sp.Text)
		}
	}
	return b.String()
}

func (r *Renderer) writeSpan(b *strings.Builder, sp StyledSpan, text string) {
	if text == "" {
		return
	}
	if sp.Category == Plain {
		b.WriteString(text)
		return
	}
	b.WriteString(r.Theme.Style(sp).Render(text))
}

// writeCursorLine splits the span under col so the grapheme at col is drawn
// with the cursor style. A cursor past the last span is drawn on a space.
func (r *Renderer) writeCursorLine(b *strings.Builder, line Line, col int) {
	pos := 0
	drawn := false
	for _, sp := range line.Spans {
		end := pos + len(sp.Text)
		if drawn || col < pos || col >= end {
			r.writeSpan(b, sp, sp.Text)
			pos = end
			continue
		}
		at := col - pos
		cell, _, _, _ := uniseg.FirstGraphemeClusterInString(sp.Text[at:], -1)
		r.writeSpan(b, sp, sp.Text[:at])
		b.WriteString(r.Theme.Cursor.Render(cell))
		r.writeSpan(b, sp, sp.Text[at+len(cell):])
		drawn = true
		pos = end
	}
	if !drawn {
		b.WriteString(r.Theme.Cursor.Render(" "))
	}
}

func (r *Renderer) gutter(line Line, width int) string {
	num := fmt.Sprintf("%*d", width, line.Number)
	if line.Error {
		return r.Theme.ErrorGutter.Render("▶"+num) + r.Theme.Gutter.Render(" │ ")
	}
	return r.Theme.Gutter.Render(" "+num+" │ ")
}

// StripANSI strips ANSI escape sequences from rendered output.
func StripANSI(s string) string {
	return ansi.Strip(s)
}
