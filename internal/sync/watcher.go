package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rjeczalik/notify"
)

const (
	defaultQuietPeriod = 500 * time.Millisecond
	eventBufferSize    = 64
)

// FilterFunc returns true if a changed path should be dropped.
type FilterFunc func(path string) bool

// Watcher watches a directory tree and coalesces change bursts into single
// triggers. Editors and builds touch many files at once; a trigger fires only
// after the tree has been quiet for the configured period.
type Watcher struct {
	watchDir string
	quiet    time.Duration
	filter   FilterFunc

	rawEvents chan notify.EventInfo
	triggers  chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewWatcher(watchDir string) *Watcher {
	return &Watcher{
		watchDir: watchDir,
		quiet:    defaultQuietPeriod,
		triggers: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// SetQuietPeriod sets how long the tree must stay quiet before a trigger fires.
func (w *Watcher) SetQuietPeriod(d time.Duration) {
	w.quiet = d
}

// FilterPaths sets a callback to drop raw events before they are coalesced.
// Must be set before Start.
func (w *Watcher) FilterPaths(fn FilterFunc) {
	w.filter = fn
}

func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("watcher start", "dir", w.watchDir)

	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)

	recursivePath := w.watchDir + "/..."
	if err := notify.Watch(recursivePath, w.rawEvents, notify.Create, notify.Write, notify.Rename, notify.Remove); err != nil {
		return fmt.Errorf("watch %s: %w", w.watchDir, err)
	}

	w.wg.Add(1)
	go w.coalesceEvents(ctx)

	return nil
}

func (w *Watcher) Stop() {
	slog.Info("watcher stopping")

	close(w.done)

	// Stop notify watching (this closes the channel automatically)
	if w.rawEvents != nil {
		notify.Stop(w.rawEvents)
	}

	w.wg.Wait()

	slog.Info("watcher stopped")
}

// Triggers fires once per quiesced burst of changes. The channel closes when
// the watcher stops.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

func (w *Watcher) coalesceEvents(ctx context.Context) {
	defer func() {
		w.wg.Done()
		close(w.triggers)
	}()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.rawEvents:
			if !ok {
				return
			}

			if w.filter != nil && w.filter(event.Path()) {
				continue
			}

			slog.Debug("watcher event", "event", event.Event(), "path", event.Path())

			// restart the quiet-period timer on every accepted event
			if timer == nil {
				timer = time.NewTimer(w.quiet)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.quiet)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.triggers <- struct{}{}:
			default:
				// a trigger is already pending
			}
		}
	}
}
