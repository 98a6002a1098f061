// Package devserver drives the edit-preview loop: it rebuilds the site when
// sources change and serves the output over HTTP.
//
// Builds are never run concurrently. A change during a build schedules one
// more build once it finishes; further changes in the meantime fold into it.
package devserver

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	blog "github.com/theacodes/blog.thea.codes"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// Site is the build the loop drives. *blog.Builder implements it.
type Site interface {
	Build(ctx context.Context) (*blog.Result, error)
	WatchDirs() []string
	OutputDir() string
}

// Config holds the loop settings. Zero values pick the defaults.
type Config struct {
	Addr     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Serve runs an initial build, then watches, rebuilds and serves until ctx
// is done. A failed initial build is logged and served as-is; only a
// watcher or listen failure ends the loop early.
func Serve(ctx context.Context, site Site, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	metrics := NewMetrics()
	rb := NewRebuilder(buildFunc(site), logger, metrics)
	if err := rb.BuildNow(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	w, err := NewWatcher(site.WatchDirs(),
		WithDebounce(cfg.Debounce),
		WithWatcherLogger(logger),
		WithExclude(site.OutputDir()))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	srv := NewServer(site.OutputDir(), cfg.Addr,
		WithMetrics(metrics),
		WithStatus(rb.Status),
		WithServerLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rb.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return w.Run(gctx, rb.Trigger)
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	logger.Info("serving site", logfields.Addr("http://"+srv.Addr()), logfields.Path(site.OutputDir()))
	err = g.Wait()
	logger.Info("preview server stopped")
	return err
}

// buildFunc adapts a Site to the Rebuilder.
func buildFunc(site Site) BuildFunc {
	return func(ctx context.Context) (int, error) {
		res, err := site.Build(ctx)
		if err != nil {
			return 0, err
		}
		return len(res.Posts), nil
	}
}
