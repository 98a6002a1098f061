package devserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// BuildFunc runs one full site build and reports how many posts it produced.
type BuildFunc func(ctx context.Context) (posts int, err error)

// Status describes the most recent build.
type Status struct {
	Builds       int       `json:"builds"`
	OK           bool      `json:"ok"`
	Error        string    `json:"error,omitempty"`
	HasGoodBuild bool      `json:"has_good_build"`
	LastBuild    time.Time `json:"last_build"`
}

// Rebuilder serialises builds. Requests made while a build runs collapse
// into a single follow-up build, so builds never overlap and a burst of
// changes costs at most two builds.
type Rebuilder struct {
	build   BuildFunc
	logger  *slog.Logger
	metrics *Metrics
	req     chan struct{}

	mu     sync.RWMutex
	status Status
}

// NewRebuilder creates a Rebuilder around build. logger and metrics may be nil.
func NewRebuilder(build BuildFunc, logger *slog.Logger, metrics *Metrics) *Rebuilder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rebuilder{
		build:   build,
		logger:  logger,
		metrics: metrics,
		req:     make(chan struct{}, 1),
	}
}

// Trigger requests a build without blocking.
func (r *Rebuilder) Trigger() {
	select {
	case r.req <- struct{}{}:
	default:
	}
}

// Run performs requested builds one at a time until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.req:
			r.logger.Info("change detected, rebuilding")
			_ = r.BuildNow(ctx)
		}
	}
}

// BuildNow runs one build synchronously and records its outcome. It must
// not be called while Run is active.
func (r *Rebuilder) BuildNow(ctx context.Context) error {
	start := time.Now()
	posts, err := r.build(ctx)
	elapsed := time.Since(start)

	// A build cut short by shutdown says nothing about the site.
	if err != nil && ctx.Err() != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.ObserveBuild(elapsed, posts, err)
	}

	r.mu.Lock()
	r.status.Builds++
	r.status.LastBuild = start
	r.status.OK = err == nil
	r.status.Error = ""
	if err != nil {
		r.status.Error = err.Error()
	} else {
		r.status.HasGoodBuild = true
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("build failed", logfields.Error(err), logfields.Duration(elapsed))
		return err
	}
	r.logger.Info("build ok", logfields.Count(posts), logfields.Duration(elapsed))
	return nil
}

// Status returns a snapshot of the latest build outcome.
func (r *Rebuilder) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}
