package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/runner"
	"github.com/zjrosen/pytutor/internal/syntax"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a Python file interactively and explain the result",
	Long: `Run a Python file through the remote interpreter. When the program calls
input() you are asked for a value and the program is replayed with every value
entered so far. The output and an explanation in your language are shown when
the run ends.

Keys: e edit the buffer (Tab, Backspace and Enter keep Python indentation,
esc stops editing), ctrl+s save, r run again (re-reads the file unless it has
unsaved edits), d dismiss, L log, ? help, q quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := readSource(path)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := rt.newSession()
	cache := newHighlightCache()
	model := runner.New(ctx, sess, source,
		runner.WithEvents(rt.events),
		runner.WithRenderer(newRenderer(true)),
		runner.WithHighlighter(syntax.NewCachedRenderer(cache, cfg.Highlight.CacheTTL)),
		runner.WithReload(func() (string, error) { return readSource(path) }),
		runner.WithSave(func(src string) error { return writeSource(path, src) }),
		runner.WithIndentWidth(cfg.Editor.IndentWidth),
		runner.WithLogs(log.NewListener(ctx)),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// writeSource replaces path with src, keeping the file's permissions.
func writeSource(path, src string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(src), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
