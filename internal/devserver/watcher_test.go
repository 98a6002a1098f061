package devserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Notes:
// - Event delivery timing is OS dependent; tests wait generously for a
//   trigger and never assert that one did not happen from real events.

func startWatcher(t *testing.T, dirs []string, opts ...WatcherOption) <-chan struct{} {
	t.Helper()

	w, err := NewWatcher(dirs, append([]WatcherOption{WithDebounce(20 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	triggered := make(chan struct{}, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func() { triggered <- struct{}{} })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return triggered
}

func waitTrigger(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild triggered")
	}
}

func TestWatcher_TriggersOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	triggered := startWatcher(t, []string{dir})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte("x"), 0o644))
	waitTrigger(t, triggered)
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	triggered := startWatcher(t, []string{dir})

	bundle := filepath.Join(dir, "bundle")
	require.NoError(t, os.Mkdir(bundle, 0o755))
	waitTrigger(t, triggered)

	// The watch on the new directory is added while handling its create event.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(bundle, "index.md"), []byte("x"), 0o644)
		select {
		case <-triggered:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingDirectoryIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]string{filepath.Join(dir, "absent"), dir})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	out, err := filepath.Abs(filepath.Join("site", "docs"))
	require.NoError(t, err)
	w := &Watcher{}
	WithExclude(filepath.Join("site", "docs"))(w)

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: "srcs/post.md", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "srcs/new.md", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "srcs/old.md", Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: "srcs/old.md", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "srcs/post.md", Op: fsnotify.Chmod}, false},
		{"write and chmod", fsnotify.Event{Name: "srcs/post.md", Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"hidden file", fsnotify.Event{Name: "srcs/.post.md.swp", Op: fsnotify.Write}, false},
		{"backup file", fsnotify.Event{Name: "srcs/post.md~", Op: fsnotify.Write}, false},
		{"emacs autosave", fsnotify.Event{Name: "srcs/#post.md#", Op: fsnotify.Write}, false},
		{"output dir", fsnotify.Event{Name: filepath.Join(out, "post.html"), Op: fsnotify.Write}, false},
		{"output sibling", fsnotify.Event{Name: out + "-old/post.html", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, w.relevant(tt.ev))
		})
	}
}
