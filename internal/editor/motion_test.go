package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestInsert_NormalizesAndMovesCaret(t *testing.T) {
	res := Insert("ab", Caret(1), "x\r\ny")
	require.Equal(t, Result{Text: "ax\nyb", Caret: 4}, res)
}

func TestInsert_ReplacesSelection(t *testing.T) {
	res := Insert("hello", Selection{Start: 4, End: 1}, "i")
	require.Equal(t, Result{Text: "hio", Caret: 2}, res)
}

func TestDelete(t *testing.T) {
	require.Equal(t, Result{Text: "ac", Caret: 1}, Delete("abc", 1))
	require.Equal(t, Result{Text: "abc", Caret: 3}, Delete("abc", 3))
	require.Equal(t, Result{Text: "a", Caret: 1}, Delete("aé", 1))
}

func TestLeftRight_StepOverClusters(t *testing.T) {
	text := "aé🙂b"
	require.Equal(t, 1, Right(text, 0))
	require.Equal(t, 3, Right(text, 1))
	require.Equal(t, 7, Right(text, 3))
	require.Equal(t, 8, Right(text, 7))
	require.Equal(t, 8, Right(text, 8))

	require.Equal(t, 7, Left(text, 8))
	require.Equal(t, 3, Left(text, 7))
	require.Equal(t, 1, Left(text, 3))
	require.Equal(t, 0, Left(text, 0))
}

func TestHomeEnd(t *testing.T) {
	text := "def f():\n    pass\n"
	require.Equal(t, 9, Home(text, 13))
	require.Equal(t, 17, End(text, 13))
	require.Equal(t, 18, End(text, 18))
	require.Equal(t, 0, Home(text, 3))
}

func TestVertical(t *testing.T) {
	text := "def f():\n  x\nprint(1)"

	tests := []struct {
		name  string
		caret int
		delta int
		want  int
	}{
		{"down keeps column", 2, 1, 11},
		{"down clamps to short line", 6, 1, 12},
		{"down again", 12, 1, 16},
		{"up from last line", 20, -1, 12},
		{"up past first line stays", 3, -1, 3},
		{"down past last line stays", 15, 1, 15},
		{"zero delta", 5, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Vertical(text, tt.caret, tt.delta))
		})
	}
}

func TestMotion_CaretStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringOf(rapid.SampledFrom([]rune("ab é\n:🙂"))).Draw(rt, "text")
		caret := rapid.IntRange(-2, len(text)+2).Draw(rt, "caret")
		delta := rapid.IntRange(-3, 3).Draw(rt, "delta")

		for _, got := range []int{
			Left(text, caret), Right(text, caret), Home(text, caret),
			End(text, caret), Vertical(text, caret, delta),
		} {
			if got < 0 || got > len(text) {
				rt.Fatalf("caret %d outside [0, %d]", got, len(text))
			}
		}
	})
}
