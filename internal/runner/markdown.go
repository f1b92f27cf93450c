package runner

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes document margins from the auto-detected style.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown renders explanations and tutor replies for the terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdown creates a markdown renderer wrapping at width.
func NewMarkdown(width int) (*Markdown, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (m *Markdown) Width() int {
	return m.width
}

// Render transforms markdown to styled terminal output. On failure the
// source text is returned as is.
func (m *Markdown) Render(markdown string) string {
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
