package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/abelbrown/palette/internal/logging"
)

// DefaultInterval is the minimum spacing between change notifications.
const DefaultInterval = 250 * time.Millisecond

// Watcher calls notify when the watched file changes. Bursts of writes are
// coalesced so notify runs at most once per interval, and a change that
// arrives during the quiet period still produces a trailing notification.
type Watcher struct {
	path     string
	interval time.Duration
	notify   func()
}

// NewWatcher watches path. Only events for path's exact name count; editor
// backups and temp files next to it are ignored.
func NewWatcher(path string, interval time.Duration, notify func()) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{path: path, interval: interval, notify: notify}
}

// Run blocks until ctx is cancelled or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		return ErrNoPath
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory so that atomic replace-by-rename is seen.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logging.Debug("Watching conversations", "path", w.path)

	limiter := rate.NewLimiter(rate.Every(w.interval), 1)
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			select {
			case pending <- struct{}{}:
			default:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Watcher error", "path", w.path, "error", err)

		case <-pending:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			if w.notify != nil {
				w.notify()
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	return filepath.Base(ev.Name) == filepath.Base(w.path)
}
