package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/cachemanager"
	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/syntax"
	"github.com/zjrosen/pytutor/internal/watcher"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-highlight a Python file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func newHighlightCache() *cachemanager.InMemoryCacheManager[[]syntax.Line] {
	return cachemanager.NewInMemoryCacheManager[[]syntax.Line](
		"highlight", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	if err != nil {
		return err
	}

	renderer := newRenderer(true)
	cached := syntax.NewCachedRenderer(newHighlightCache(), cfg.Highlight.CacheTTL)
	out := cmd.OutOrStdout()

	draw := func() {
		source, err := readSource(path)
		if err != nil {
			log.ErrorErr(log.CatWatcher, "Failed to read watched file", err, "path", path)
			_, _ = fmt.Fprintf(out, "%s%v\n", clearScreen, err)
			return
		}
		lines := cached.Render(ctx, source, nil)
		_, _ = fmt.Fprintf(out, "%s%s\n\n%s\n", clearScreen, w.Path(), renderer.Format(lines))
	}

	draw()
	return waitForChanges(ctx, onChange, draw)
}

// waitForChanges calls draw for every change until ctx ends.
func waitForChanges(ctx context.Context, onChange <-chan struct{}, draw func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-onChange:
			if !ok {
				return nil
			}
			draw()
		}
	}
}
