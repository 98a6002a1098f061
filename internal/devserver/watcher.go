package devserver

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/theacodes/blog.thea.codes/internal/fileutil"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before triggering a build.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes below a set of directories. Directories created
// after start are picked up.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	exclude  []string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle delay. Non-positive values are ignored.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger for watch events.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithExclude ignores events below dirs, typically the output directory
// when it sits inside a watched tree.
func WithExclude(dirs ...string) WatcherOption {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.exclude = append(w.exclude, abs)
			}
		}
	}
}

// NewWatcher watches every existing directory in dirs recursively. Missing
// directories are skipped.
func NewWatcher(dirs []string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:       fw,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		if !fileutil.DirExists(dir) {
			w.logger.Debug("not watching missing directory", logfields.Path(dir))
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
		w.addRecursive(abs)
	}
	return w, nil
}

// Run calls trigger once per settled burst of relevant events until ctx is
// done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, trigger)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && fileutil.DirExists(ev.Name) {
				w.addRecursive(ev.Name)
			}
			w.logger.Debug("file change", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// relevant reports whether an event should cause a rebuild.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == 0 || ev.Op == fsnotify.Chmod {
		return false
	}
	if ignoredName(ev.Name) {
		return false
	}
	for _, dir := range w.exclude {
		if ev.Name == dir || strings.HasPrefix(ev.Name, dir+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// ignoredName reports hidden files and editor temporaries.
func ignoredName(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
