package syntax

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Highlight_Gutter(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	r := NewRenderer()
	out := r.Highlight("def f():\n    pass", []int{2})

	require.NotEqual(t, out, StripANSI(out), "expected ANSI styling")
	require.Equal(t, " 1 │ def f():\n▶2 │     pass", StripANSI(out))
}

func TestRenderer_Highlight_NoGutter(t *testing.T) {
	r := &Renderer{Theme: DefaultTheme()}
	src := "x = (1, 'a')  # note"

	require.Equal(t, src, StripANSI(r.Highlight(src, nil)))
}

func TestRenderer_GutterWidthFollowsLastLine(t *testing.T) {
	r := &Renderer{Theme: DefaultTheme(), Gutter: true}
	buffer := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj"

	out := StripANSI(r.Highlight(buffer, nil))

	require.Contains(t, out, "  1 │ a\n")
	require.Contains(t, out, " 10 │ j")
}

func TestTheme_Style(t *testing.T) {
	theme := DefaultTheme()

	require.Equal(t, theme.Brackets[1], theme.Style(StyledSpan{Category: Bracket, Depth: 5}))
	require.Equal(t, theme.Keyword, theme.Style(StyledSpan{Category: Keyword, Depth: -1}))
	require.Equal(t, theme.Plain, theme.Style(StyledSpan{Category: Bracket, Depth: -1}))
}

func TestTheme_WithPalette(t *testing.T) {
	theme := DefaultTheme().WithPalette([]string{"#ff0000", "#00ff00"})
	require.Len(t, theme.Brackets, 2)

	unchanged := DefaultTheme().WithPalette(nil)
	require.Len(t, unchanged.Brackets, len(DefaultPalette))
}

func TestRenderer_FormatCursor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	r := &Renderer{Theme: DefaultTheme()}
	lines := Render("ab\ncd", nil)

	out := r.FormatCursor(lines, 2, 1)

	require.Equal(t, "ab\ncd", StripANSI(out))
	require.Contains(t, out, r.Theme.Cursor.Render("d"))
}

func TestRenderer_FormatCursor_EndOfLine(t *testing.T) {
	r := &Renderer{Theme: DefaultTheme()}
	lines := Render("ab\n\ncd", nil)

	require.Equal(t, "ab \n\ncd", StripANSI(r.FormatCursor(lines, 1, 2)))
	require.Equal(t, "ab\n \ncd", StripANSI(r.FormatCursor(lines, 2, 0)))
}

func TestRenderer_FormatCursor_InsideStyledSpan(t *testing.T) {
	r := &Renderer{Theme: DefaultTheme()}
	lines := Render(`print("hi")`, nil)

	require.Equal(t, `print("hi")`, StripANSI(r.FormatCursor(lines, 1, 7)))
	require.Equal(t, r.Format(lines), r.FormatCursor(lines, 0, 0))
}
