package blog

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) (*pipeline.Pipeline, error)
	Release(*pipeline.Pipeline)
	Size() int
} = (*RendererPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_NegativeWorkers(t *testing.T) {
	t.Parallel()

	got := ResolvePoolSize(-5)

	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(-5) = %d, should be between %d and %d", got, MinPoolSize, MaxPoolSize)
	}
}

func TestRendererPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewRendererPool(tt.size, pipeline.Config{})
			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRendererPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := NewRendererPool(2, pipeline.Config{})

	pl1, err := pool.Acquire(ctx)
	if err != nil || pl1 == nil {
		t.Fatalf("Acquire() = %v, %v", pl1, err)
	}
	pl2, err := pool.Acquire(ctx)
	if err != nil || pl2 == nil {
		t.Fatalf("Acquire() = %v, %v", pl2, err)
	}
	if pl1 == pl2 {
		t.Error("expected different pipeline instances")
	}

	pool.Release(pl1)
	pl3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if pl3 != pl1 {
		t.Error("expected to get back released pipeline")
	}

	pool.Release(pl2)
	pool.Release(pl3)
}

func TestRendererPool_LazyCreation(t *testing.T) {
	t.Parallel()

	pool := NewRendererPool(3, pipeline.Config{})
	if got := pool.Created(); got != 0 {
		t.Fatalf("Created() before Acquire = %d, want 0", got)
	}

	for range 5 {
		pl, err := pool.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		pool.Release(pl)
	}

	// Sequential use never needs a second pipeline.
	if got := pool.Created(); got != 1 {
		t.Errorf("Created() = %d, want 1", got)
	}
}

func TestRendererPool_AcquireHonoursContext(t *testing.T) {
	t.Parallel()

	pool := NewRendererPool(1, pipeline.Config{})
	held, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(held)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pl, err := pool.Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on an exhausted pool = %v, %v; want DeadlineExceeded", pl, err)
	}
}

// TestRendererPool_HighContention checks the pool stays deadlock-free with
// many more workers than pipelines, each rendering real content.
func TestRendererPool_HighContention(t *testing.T) {
	t.Parallel()

	pool := NewRendererPool(2, pipeline.Config{})

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				pl, err := pool.Acquire(context.Background())
				if err != nil {
					errs <- err
					return
				}
				_, err = pl.Render(context.Background(), "# Title\n\n```go\nx := 1\n```\n")
				pool.Release(pl)
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("high contention test timed out - possible deadlock")
	}

	close(errs)
	for err := range errs {
		t.Errorf("render error: %v", err)
	}
	if got := pool.Created(); got > 2 {
		t.Errorf("Created() = %d, want at most 2", got)
	}
}
