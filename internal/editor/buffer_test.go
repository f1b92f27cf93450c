package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "a\nb\nc", Normalize("a\r\nb\rc"))
	require.Equal(t, "plain", Normalize("plain"))
}

func TestLines(t *testing.T) {
	require.Equal(t, []string{"x = 1", "print(x)", ""}, Lines("x = 1\r\nprint(x)\n"))
}

func TestLineAt(t *testing.T) {
	text := "ab\ncde\n"

	line, col := LineAt(text, 0)
	require.Equal(t, 1, line)
	require.Equal(t, 0, col)

	line, col = LineAt(text, 5)
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = LineAt(text, 100)
	require.Equal(t, 3, line)
	require.Equal(t, 0, col)
}
