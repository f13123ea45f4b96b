// Package dfs exposes filesystem change notifications as a drx Observable.
package dfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/gordian-engine/drx"
)

// Config is the configuration for [Watch].
type Config struct {
	// Files or directories to watch.
	// Directories are not watched recursively.
	Paths []string

	// If nonzero, only events having at least one of these operations
	// are produced.
	Ops fsnotify.Op

	// Optional; defaults to discarding all output.
	Log *slog.Logger
}

func (c Config) validate() error {
	var err error

	if len(c.Paths) == 0 {
		err = errors.Join(err, errors.New("Paths must not be empty"))
	}
	for i, p := range c.Paths {
		if p == "" {
			err = errors.Join(err, fmt.Errorf("Paths[%d] is empty", i))
		}
	}

	return err
}

// Watch returns an Observable producing filesystem events for cfg.Paths.
//
// Each subscription owns its own watcher,
// created inside Subscribe and closed when the subscription ends.
// Subscribe blocks for the life of the watcher,
// so it is normally used with [drx.SubscribeOn].
//
// Failing to create the watcher or to watch a path fails the stream.
// A kernel event queue overflow is logged and skipped,
// because events were lost but the watcher is still usable.
// Any other watcher error fails the stream.
func Watch(cfg Config) (drx.Observable[fsnotify.Event], error) {
	if err := cfg.validate(); err != nil {
		return nil, &drx.GenerateError{
			Generator: "dfs.Watch",
			Reason:    "invalid configuration",
			Err:       err,
		}
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	paths := append([]string(nil), cfg.Paths...)

	return drx.Generate(func(ctx context.Context, out drx.Observer[fsnotify.Event]) {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			out.OnError(fmt.Errorf("failed to create watcher: %w", err))
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				log.Debug("Failed to close watcher", "err", err)
			}
		}()

		for _, p := range paths {
			if err := w.Add(p); err != nil {
				out.OnError(fmt.Errorf("failed to watch %q: %w", p, err))
				return
			}
		}
		log.Debug("Watching", "paths", paths)

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					out.OnCompleted()
					return
				}
				if cfg.Ops != 0 && ev.Op&cfg.Ops == 0 {
					continue
				}
				out.OnNext(ev)

			case err, ok := <-w.Errors:
				if !ok {
					out.OnCompleted()
					return
				}
				if errors.Is(err, fsnotify.ErrEventOverflow) {
					log.Warn("Filesystem events were dropped", "err", err)
					continue
				}
				out.OnError(err)
				return
			}
		}
	})
}
