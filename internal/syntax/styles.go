package syntax

import "github.com/charmbracelet/lipgloss"

// Token colours.
var (
	CommentColor = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FACC15"} // yellow
	StringColor  = lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"} // orange
	KeywordColor = lipgloss.AdaptiveColor{Light: "#C026D3", Dark: "#E879F9"} // fuchsia
	BuiltinColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"} // blue
	NumberColor  = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#A5B4FC"} // indigo
	GutterColor  = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
)

// DefaultPalette is the bracket palette: amber, purple, blue, rose.
var DefaultPalette = []lipgloss.TerminalColor{
	lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"},
	lipgloss.AdaptiveColor{Light: "#9333EA", Dark: "#C084FC"},
	lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"},
	lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"},
}

// Theme holds the styles a Renderer draws with.
type Theme struct {
	Plain    lipgloss.Style
	Comment  lipgloss.Style
	String   lipgloss.Style
	Keyword  lipgloss.Style
	Builtin  lipgloss.Style
	Number   lipgloss.Style
	Brackets []lipgloss.Style

	Gutter      lipgloss.Style
	ErrorGutter lipgloss.Style
	Cursor      lipgloss.Style
}

// DefaultTheme returns the built-in theme with DefaultPalette brackets.
func DefaultTheme() Theme {
	base := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return Theme{
		Plain:       base,
		Comment:     base.Foreground(CommentColor).Italic(true),
		String:      base.Foreground(StringColor),
		Keyword:     base.Foreground(KeywordColor).Bold(true),
		Builtin:     base.Foreground(BuiltinColor).Bold(true),
		Number:      base.Foreground(NumberColor).Bold(true),
		Brackets:    bracketStyles(DefaultPalette),
		Gutter:      base.Foreground(GutterColor),
		ErrorGutter: base.Foreground(ErrorColor).Bold(true),
		Cursor:      base.Reverse(true),
	}
}

// WithPalette returns a copy of t whose brackets cycle through the given hex
// colours. An empty list keeps the current palette.
func (t Theme) WithPalette(hex []string) Theme {
	if len(hex) == 0 {
		return t
	}
	colors := make([]lipgloss.TerminalColor, len(hex))
	for i, h := range hex {
		colors[i] = lipgloss.Color(h)
	}
	t.Brackets = bracketStyles(colors)
	return t
}

func bracketStyles(colors []lipgloss.TerminalColor) []lipgloss.Style {
	out := make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		out[i] = lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion).Foreground(c).Bold(true)
	}
	return out
}

// Style returns the style for a span.
func (t Theme) Style(sp StyledSpan) lipgloss.Style {
	switch sp.Category {
	case Comment:
		return t.Comment
	case String:
		return t.String
	case Keyword:
		return t.Keyword
	case Builtin:
		return t.Builtin
	case Number:
		return t.Number
	case Bracket:
		if len(t.Brackets) == 0 || sp.Depth < 0 {
			return t.Plain
		}
		return t.Brackets[sp.Depth%len(t.Brackets)]
	default:
		return t.Plain
	}
}
