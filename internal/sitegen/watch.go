package sitegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/uphill/internal/view"
)

// DefaultWatchDelay is how long the watcher waits for a burst of file events
// to settle before rebuilding.
const DefaultWatchDelay = 300 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Dirs are watched non-recursively.
	Dirs  []string
	Delay time.Duration
	Clock view.Clock

	// Built, when set, is called after every rebuild.
	Built func(Report, error)
}

// Watch rebuilds the site whenever a file in the watched directories
// changes, until ctx is cancelled. Rebuilds run one at a time; a failed
// rebuild is logged and the watcher keeps going.
func (g *Generator) Watch(ctx context.Context, opts WatchOptions) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range opts.Dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	loop := view.NewLoop()
	debounce := view.NewDebouncer(opts.Clock, delay, loop.Post)

	rebuild := func() {
		rep, err := g.Build(ctx)
		if err != nil {
			g.logger.Error("rebuild failed", "error", err)
		}
		if opts.Built != nil {
			opts.Built(rep, err)
		}
	}

	g.logger.Info("watching for changes", "dirs", opts.Dirs)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return loop.Run(ctx)
	})
	eg.Go(func() error {
		defer debounce.Cancel()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				g.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
				debounce.Trigger(rebuild)
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				g.logger.Error("watcher error", "error", err)
			}
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	g.logger.Info("watcher stopped")
	return nil
}
