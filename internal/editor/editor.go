// Package editor implements the indent-aware key handling of the code buffer.
//
// Offsets are byte offsets into the flattened buffer text. Every operation is
// a pure function of (text, selection, key).
package editor

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/pytutor/internal/log"
)

// DefaultIndentWidth is the number of spaces in one indent unit.
const DefaultIndentWidth = 4

// Key is an edit key the editor intercepts.
type Key int

const (
	KeyTab Key = iota
	KeyBackspace
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyTab:
		return "tab"
	case KeyBackspace:
		return "backspace"
	case KeyEnter:
		return "enter"
	default:
		return "unknown"
	}
}

// Selection is a byte range [Start, End] in the buffer. Start == End is a
// caret.
type Selection struct {
	Start int
	End   int
}

// Caret returns a collapsed selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Result is the buffer and caret after a key.
type Result struct {
	Text  string
	Caret int
}

// Editor applies keys using a configurable indent unit.
type Editor struct {
	IndentWidth int
}

// New returns an Editor with the given indent width. Non-positive widths use
// DefaultIndentWidth.
func New(indentWidth int) *Editor {
	if indentWidth <= 0 {
		indentWidth = DefaultIndentWidth
	}
	return &Editor{IndentWidth: indentWidth}
}

var defaultEditor = New(DefaultIndentWidth)

// ApplyKey applies key with the default four-space indent unit.
func ApplyKey(text string, sel Selection, key Key) Result {
	return defaultEditor.Apply(text, sel, key)
}

// Apply returns the buffer and caret produced by key. Offsets outside the
// text are clamped and a reversed selection is swapped.
func (e *Editor) Apply(text string, sel Selection, key Key) Result {
	sel = clamp(sel, len(text))

	var res Result
	switch key {
	case KeyTab:
		res = e.tab(text, sel)
	case KeyBackspace:
		res = e.backspace(text, sel)
	case KeyEnter:
		res = e.enter(text, sel)
	default:
		res = Result{Text: text, Caret: sel.End}
	}

	log.Debug(log.CatEditor, "key applied", "key", key, "from", sel.Start, "to", sel.End, "caret", res.Caret)
	return res
}

func (e *Editor) unit() string {
	w := e.IndentWidth
	if w <= 0 {
		w = DefaultIndentWidth
	}
	return strings.Repeat(" ", w)
}

func (e *Editor) tab(text string, sel Selection) Result {
	return replace(text, sel, e.unit())
}

func (e *Editor) backspace(text string, sel Selection) Result {
	if !sel.Collapsed() {
		return replace(text, sel, "")
	}
	caret := sel.Start
	if caret == 0 {
		return Result{Text: text, Caret: 0}
	}

	unit := e.unit()
	prefix := text[lineStart(text, caret):caret]
	if len(prefix) > 0 && len(prefix)%len(unit) == 0 && strings.Trim(prefix, " ") == "" {
		return replace(text, Selection{Start: caret - len(unit), End: caret}, "")
	}

	return replace(text, Selection{Start: caret - lastClusterLen(text[:caret]), End: caret}, "")
}

func (e *Editor) enter(text string, sel Selection) Result {
	before := text[lineStart(text, sel.Start):sel.Start]

	indent := leadingWhitespace(before)
	if strings.HasSuffix(strings.TrimSpace(before), ":") {
		indent += e.unit()
	}
	return replace(text, sel, "\n"+indent)
}

// replace substitutes sel with s and places the caret after s.
func replace(text string, sel Selection, s string) Result {
	return Result{
		Text:  text[:sel.Start] + s + text[sel.End:],
		Caret: sel.Start + len(s),
	}
}

func clamp(sel Selection, n int) Selection {
	sel.Start = min(max(sel.Start, 0), n)
	sel.End = min(max(sel.End, 0), n)
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	return sel
}

// lineStart returns the offset of the first byte of the line containing
// offset.
func lineStart(text string, offset int) int {
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// lastClusterLen returns the byte length of the last grapheme cluster in s.
func lastClusterLen(s string) int {
	n := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, to := g.Positions()
		n = to - from
	}
	if n == 0 {
		return 1
	}
	return n
}
