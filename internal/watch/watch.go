// Package watch re-runs an extraction whenever a watched directory
// receives new or modified files, for forensic workflows where a
// sample is still being produced (an unpacking tool dropping files, a
// download in progress).
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is invoked once per settled batch of filesystem events, with
// the set of paths that changed.
type Handler func(paths []string)

// Run watches dir (non-recursively; callers that need recursive
// watching should call Run once per subdirectory) and invokes handler
// after a burst of writes quiesces for settleDelay. Run blocks until
// ctx is cancelled.
func Run(ctx context.Context, dir string, settleDelay time.Duration, logger *slog.Logger, handler Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		handler(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(settleDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timerC():
			flush()
		}
	}
}
