package blog

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// Worker count bounds used when no explicit count is configured.
const (
	MinPoolSize = 1
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the static copy and the writer.
	cpuDivisor = 2
)

// RendererPool lends render pipelines to build workers, one worker per
// pipeline at a time. Pipelines are built on demand, up to the pool size,
// and an idle one is always preferred over building another.
type RendererPool struct {
	cfg     pipeline.Config
	idle    chan *pipeline.Pipeline
	permits chan struct{}
	created atomic.Int32
}

// NewRendererPool returns a pool of up to n pipelines, at least one.
func NewRendererPool(n int, cfg pipeline.Config) *RendererPool {
	n = max(n, 1)
	p := &RendererPool{
		cfg:     cfg,
		idle:    make(chan *pipeline.Pipeline, n),
		permits: make(chan struct{}, n),
	}
	for range n {
		p.permits <- struct{}{}
	}
	return p
}

// Acquire waits for a pipeline or for ctx to end.
func (p *RendererPool) Acquire(ctx context.Context) (*pipeline.Pipeline, error) {
	select {
	case pl := <-p.idle:
		return pl, nil
	default:
	}

	select {
	case pl := <-p.idle:
		return pl, nil
	case <-p.permits:
		p.created.Add(1)
		return pipeline.New(p.cfg), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release hands pl back. It must come from Acquire on the same pool.
func (p *RendererPool) Release(pl *pipeline.Pipeline) {
	p.idle <- pl
}

// Size is the most pipelines the pool will build.
func (p *RendererPool) Size() int { return cap(p.permits) }

// Created reports how many pipelines have been built.
func (p *RendererPool) Created() int { return int(p.created.Load()) }

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
