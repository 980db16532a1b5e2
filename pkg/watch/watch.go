// Package watch turns file system notifications inside a vault into
// [engine.Event]s.
//
// Events are coalesced per document for a short settle window: a newly
// created note that is then written reports a single create event. A rename
// notification followed by a create within the window reports a rename
// event carrying the previous path, which lets [engine.ShouldHandle] ignore
// moves that keep the file name.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/log"
	"github.com/macropower/notemover/pkg/vault"
)

// DefaultWindow is the default settle window.
const DefaultWindow = 300 * time.Millisecond

// Vault is the part of a vault the watcher needs.
type Vault interface {
	Dir() string
	Rel(abs string) (string, error)
	IsReserved(p string) bool
}

// HandlerFunc receives settled events. Calls are sequential.
type HandlerFunc func(ctx context.Context, ev engine.Event)

// Opt configures a [Watcher].
type Opt func(*Watcher)

// WithWindow sets the settle window.
func WithWindow(d time.Duration) Opt {
	return func(w *Watcher) {
		if d > 0 {
			w.window = d
		}
	}
}

type pendingEvent struct {
	at time.Time
	ev engine.Event
}

// Watcher watches a vault recursively.
type Watcher struct {
	vault   Vault
	fsw     *fsnotify.Watcher
	now     func() time.Time
	queue   map[string]pendingEvent
	renames []pendingEvent
	window  time.Duration
	mu      sync.Mutex
}

// New creates a [Watcher] and registers every non-reserved directory of v.
func New(v Vault, opts ...Opt) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		vault:  v,
		fsw:    fsw,
		now:    time.Now,
		queue:  map[string]pendingEvent{},
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(w)
	}

	err = w.addTree(v.Dir())
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}

// Run dispatches settled events to handle until ctx is done or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context, handle HandlerFunc) error {
	logger := log.WithContext(ctx)

	ticker := time.NewTicker(w.window / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // Return the context error as is.

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			w.observe(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watcher error", slog.Any("err", err))

		case <-ticker.C:
			for _, ev := range w.settled() {
				handle(ctx, ev)
			}
		}
	}
}

// observe records one notification.
func (w *Watcher) observe(ev fsnotify.Event) {
	rel, err := w.vault.Rel(ev.Name)
	if err != nil || w.vault.IsReserved(rel) {
		return
	}

	if ev.Has(fsnotify.Create) {
		info, statErr := os.Stat(ev.Name)
		if statErr == nil && info.IsDir() {
			err := w.addTree(ev.Name)
			if err != nil {
				slog.Warn("watch new folder", slog.String("folder", rel), slog.Any("err", err))
			}

			return
		}
	}

	if !vault.IsDocument(rel) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()

	switch {
	case ev.Has(fsnotify.Rename), ev.Has(fsnotify.Remove):
		delete(w.queue, rel)

		if ev.Has(fsnotify.Rename) {
			w.renames = append(w.renames, pendingEvent{
				at: now,
				ev: engine.Event{Reason: engine.ReasonRename, OldPath: rel},
			})
		}

	case ev.Has(fsnotify.Create):
		next := engine.Event{Reason: engine.ReasonCreate, Path: rel}
		if old, ok := w.takeRename(now); ok {
			next = engine.Event{Reason: engine.ReasonRename, Path: rel, OldPath: old}
		}

		w.queue[rel] = pendingEvent{at: now, ev: next}

	case ev.Has(fsnotify.Write):
		p, ok := w.queue[rel]
		if !ok {
			p.ev = engine.Event{Reason: engine.ReasonMetadataChanged, Path: rel}
		}

		p.at = now
		w.queue[rel] = p
	}
}

// takeRename pops the oldest rename still inside the window.
func (w *Watcher) takeRename(now time.Time) (string, bool) {
	w.renames = slices.DeleteFunc(w.renames, func(p pendingEvent) bool {
		return now.Sub(p.at) > w.window
	})
	if len(w.renames) == 0 {
		return "", false
	}

	old := w.renames[0].ev.OldPath
	w.renames = w.renames[1:]

	return old, true
}

// settled removes and returns the events whose window has passed, oldest
// first.
func (w *Watcher) settled() []engine.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()

	var ready []pendingEvent

	for p, pe := range w.queue {
		if now.Sub(pe.at) >= w.window {
			ready = append(ready, pe)
			delete(w.queue, p)
		}
	}

	slices.SortFunc(ready, func(a, b pendingEvent) int {
		return a.at.Compare(b.at)
	})

	out := make([]engine.Event, len(ready))
	for i, pe := range ready {
		out[i] = pe.ev
	}

	return out
}

// addTree watches dir and its non-reserved subdirectories.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}

			return err
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := w.vault.Rel(p)
		if relErr == nil && w.vault.IsReserved(rel) {
			return filepath.SkipDir
		}

		return w.fsw.Add(p)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	return nil
}
