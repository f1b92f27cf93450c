package editor

import "strings"

// Normalize converts CRLF and lone CR line endings to "\n" so a loaded or
// pasted buffer never contains carriage returns.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Lines splits a buffer into lines.
func Lines(text string) []string {
	return strings.Split(Normalize(text), "\n")
}

// LineAt returns the 1-based line number and 0-based byte column of offset.
func LineAt(text string, offset int) (line, col int) {
	offset = min(max(offset, 0), len(text))
	line = strings.Count(text[:offset], "\n") + 1
	return line, offset - lineStart(text, offset)
}
