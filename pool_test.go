package invoicepdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// newTestPool builds a pool whose exporters never start a browser.
func newTestPool(n int) *ExporterPool {
	return NewExporterPool(n, withRasterizer(&mockRasterizer{}))
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"explicit can exceed max", 100, 100},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -5, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestExporterPool_Size(t *testing.T) {
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

			pool := newTestPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExporterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(2)
	defer pool.Close()

	e1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	e2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if e1 == e2 {
		t.Error("expected different exporter instances")
	}

	pool.Release(e1)
	e3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if e3 != e1 {
		t.Error("expected to get back released exporter")
	}

	pool.Release(e2)
	pool.Release(e3)
}

func TestExporterPool_AcquireBlocksUntilContextDone(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	e, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer pool.Release(e)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on exhausted pool error = %v, want DeadlineExceeded", err)
	}
}

func TestExporterPool_CreationError(t *testing.T) {
	t.Parallel()

	pool := NewExporterPool(1, withRasterizer(&mockRasterizer{}), WithStyle("nonexistent"))
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Acquire() error = %v, want ErrStyleNotFound", err)
	}
	// The failed slot is free again
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("second Acquire() error = %v, want ErrStyleNotFound", err)
	}
}

func TestExporterPool_Close(t *testing.T) {
	t.Parallel()

	r := &mockRasterizer{}
	pool := NewExporterPool(2, withRasterizer(r))

	e, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !r.closed {
		t.Error("Close() did not close exporters")
	}

	// Release and double close after close are no-ops
	pool.Release(e)
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

// TestExporterPool_HighContention verifies the pool remains deadlock-free
// with many goroutines cycling through a small pool.
func TestExporterPool_HighContention(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	defer pool.Close()

	var wg sync.WaitGroup
	const goroutines, iterations = 50, 10

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range iterations {
				e, err := pool.Acquire(context.Background())
				if err != nil {
					t.Errorf("Acquire() error: %v", err)
					return
				}
				time.Sleep(time.Duration(j%3) * time.Millisecond)
				pool.Release(e)
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
}
