package watch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/vault/paths"
)

type fakeVault struct {
	dir string
}

func (v fakeVault) Dir() string { return v.dir }

func (v fakeVault) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(v.dir, abs)
	if err != nil {
		return "", err
	}

	return paths.Normalize(filepath.ToSlash(rel)), nil
}

func (v fakeVault) IsReserved(p string) bool {
	return paths.Within(p, ".obsidian")
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWatcher(t *testing.T) (*Watcher, *fakeClock, string) {
	t.Helper()

	dir := t.TempDir()
	clock := &fakeClock{t: time.Unix(0, 0)}

	return &Watcher{
		vault:  fakeVault{dir: dir},
		now:    clock.now,
		queue:  map[string]pendingEvent{},
		window: 100 * time.Millisecond,
	}, clock, dir
}

func TestWatcher_Coalesce(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		ops  []fsnotify.Event
		want []engine.Event
	}{
		"create then write": {
			ops: []fsnotify.Event{
				{Name: "Inbox/a.md", Op: fsnotify.Create},
				{Name: "Inbox/a.md", Op: fsnotify.Write},
				{Name: "Inbox/a.md", Op: fsnotify.Write},
			},
			want: []engine.Event{{Reason: engine.ReasonCreate, Path: "Inbox/a.md"}},
		},
		"write only": {
			ops: []fsnotify.Event{
				{Name: "Inbox/a.md", Op: fsnotify.Write},
			},
			want: []engine.Event{{Reason: engine.ReasonMetadataChanged, Path: "Inbox/a.md"}},
		},
		"rename pair": {
			ops: []fsnotify.Event{
				{Name: "Inbox/a.md", Op: fsnotify.Rename},
				{Name: "Meetings/a.md", Op: fsnotify.Create},
			},
			want: []engine.Event{{Reason: engine.ReasonRename, Path: "Meetings/a.md", OldPath: "Inbox/a.md"}},
		},
		"removed before settling": {
			ops: []fsnotify.Event{
				{Name: "Inbox/a.md", Op: fsnotify.Create},
				{Name: "Inbox/a.md", Op: fsnotify.Remove},
			},
		},
		"ignores other files": {
			ops: []fsnotify.Event{
				{Name: "Inbox/a.png", Op: fsnotify.Create},
				{Name: ".obsidian/workspace.md", Op: fsnotify.Write},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			w, clock, dir := newTestWatcher(t)
			for _, op := range tc.ops {
				op.Name = filepath.Join(dir, filepath.FromSlash(op.Name))
				w.observe(op)
				clock.advance(10 * time.Millisecond)
			}

			assert.Empty(t, w.settled(), "events must wait for the window")

			clock.advance(time.Second)

			got := w.settled()
			if len(tc.want) == 0 {
				assert.Empty(t, got)

				return
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWatcher_StaleRenameIgnored(t *testing.T) {
	t.Parallel()

	w, clock, dir := newTestWatcher(t)

	w.observe(fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Rename})
	clock.advance(time.Second)
	w.observe(fsnotify.Event{Name: filepath.Join(dir, "b.md"), Op: fsnotify.Create})
	clock.advance(time.Second)

	assert.Equal(t, []engine.Event{{Reason: engine.ReasonCreate, Path: "b.md"}}, w.settled())
}
