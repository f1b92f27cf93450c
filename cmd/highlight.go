package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/editor"
	"github.com/zjrosen/pytutor/internal/syntax"
)

var (
	highlightErrors   string
	highlightNoGutter bool
	highlightPlain    bool
)

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE",
	Short: "Print a Python file with syntax highlighting",
	Long: `Print a Python file with keyword, string, comment and number colouring and
depth-coloured brackets.

Examples:
  pytutor highlight main.py
  pytutor highlight main.py --errors 3,7
  pytutor highlight main.py --no-gutter`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		errorLines, err := parseLineList(highlightErrors)
		if err != nil {
			return err
		}

		out := newRenderer(!highlightNoGutter).Highlight(source, errorLines)
		if highlightPlain {
			out = syntax.StripANSI(out)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	highlightCmd.Flags().StringVar(&highlightErrors, "errors", "", "comma separated line numbers to flag (e.g. 2,5)")
	highlightCmd.Flags().BoolVar(&highlightNoGutter, "no-gutter", false, "hide line numbers")
	highlightCmd.Flags().BoolVar(&highlightPlain, "plain", false, "strip colours from the output")
	rootCmd.AddCommand(highlightCmd)
}

// readSource reads a file with line endings normalized to \n.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user supplied source path
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return editor.Normalize(string(data)), nil
}

// newRenderer builds a renderer honouring the configured palette.
func newRenderer(gutter bool) *syntax.Renderer {
	r := syntax.NewRenderer()
	r.Theme = r.Theme.WithPalette(cfg.Highlight.Palette)
	r.Gutter = gutter && cfg.Highlight.Gutter
	return r
}

// parseLineList parses "1, 3,5" into line numbers.
func parseLineList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var lines []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid line number %q", field)
		}
		lines = append(lines, n)
	}
	return lines, nil
}
