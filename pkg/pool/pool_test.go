package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunExecutesAllJobs(t *testing.T) {
	var done atomic.Int64
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = func(context.Context) { done.Add(1) }
	}

	p := New(8, time.Second)
	if err := p.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := done.Load(); got != 50 {
		t.Fatalf("jobs run = %d, want 50", got)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = func(context.Context) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
		}
	}

	if err := New(3, 0).Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRunCancelAbandonsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int64
	block := make(chan struct{})
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = func(c context.Context) {
			started.Add(1)
			select {
			case <-block:
			case <-c.Done():
			}
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- New(2, 0).Run(ctx, jobs) }()

	// Let the two workers pick up jobs, then cancel the run.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if got := started.Load(); got >= 20 {
		t.Fatalf("started = %d, queue should have been abandoned", got)
	}
	close(block)
}

func TestRunPerJobTimeout(t *testing.T) {
	var expired atomic.Int64
	jobs := []Job{
		func(c context.Context) {
			select {
			case <-c.Done():
				expired.Add(1)
			case <-time.After(time.Second):
			}
		},
	}

	start := time.Now()
	if err := New(1, 20*time.Millisecond).Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expired.Load() != 1 {
		t.Fatalf("job context never expired")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("timeout did not cut the job short: %v", elapsed)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	p := New(0, 0)
	if p.workers != 1 {
		t.Fatalf("workers = %d, want 1", p.workers)
	}
	p = New(-5, 0)
	if p.workers != 1 {
		t.Fatalf("workers = %d, want 1", p.workers)
	}
}
