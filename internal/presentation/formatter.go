package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatRuns formats a list of runs as JSON
func (f *Formatter) FormatRuns(runs []RunDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runs)
}

// summaryWidth bounds the first-line preview of source and output.
const summaryWidth = 40

// FormatRunsTable writes one line per run: time, state, locale, source and
// output previews.
func (f *Formatter) FormatRunsTable(runs []RunDTO) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(f.writer, "No runs recorded yet.")
		return err
	}
	for _, r := range runs {
		_, err := fmt.Fprintf(f.writer, "%s  %-14s %-2s  %s  → %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.State,
			r.Locale,
			preview(r.Source),
			preview(r.Output),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// preview returns the first non-blank line, truncated and padded to summaryWidth cells.
func preview(s string) string {
	line := ""
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			line = strings.TrimSpace(l)
			break
		}
	}
	line = runewidth.Truncate(line, summaryWidth, "…")
	return runewidth.FillRight(line, summaryWidth)
}
