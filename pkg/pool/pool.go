// Package pool is a bounded worker pool for fan-out jobs with a
// per-job timeout. Jobs are independent; the pool imposes no ordering
// on completion.
package pool

import (
	"context"
	"sync"
	"time"
)

// Job is one unit of work. The context it receives is already bounded
// by the pool's per-job timeout and canceled when the run is canceled.
type Job func(ctx context.Context)

// Pool runs jobs with a fixed number of workers.
type Pool struct {
	workers int
	timeout time.Duration
}

// New returns a pool with the given concurrency. Workers below 1 are
// raised to 1; a zero timeout disables the per-job deadline.
func New(workers int, timeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, timeout: timeout}
}

// Run executes all jobs and blocks until every started job returns.
// When ctx is canceled, queued jobs are abandoned, running jobs see
// their context canceled, and Run returns ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) error {
	queue := make(chan Job)
	var wg sync.WaitGroup

	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			for job := range queue {
				p.invoke(ctx, job)
			}
		}()
	}

	var err error
feed:
	for _, job := range jobs {
		select {
		case queue <- job:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(queue)
	wg.Wait()
	return err
}

func (p *Pool) invoke(ctx context.Context, job Job) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	job(ctx)
}
