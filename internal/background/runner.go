// Package background runs fire-and-forget side effects off the request
// path. Task failures are logged and counted, never returned to the
// caller.
package background

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Runner executes named tasks asynchronously. Tasks get their own
// context with a bounded timeout, detached from the request context so
// a returned response does not cancel its persistence.
type Runner struct {
	log     *zap.Logger
	timeout time.Duration

	wg       sync.WaitGroup
	failures atomic.Int64
}

// NewRunner builds a Runner. timeout bounds each task; zero means a
// 30 second default.
func NewRunner(log *zap.Logger, timeout time.Duration) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{log: log, timeout: timeout}
}

// Go schedules fn and returns immediately. Errors and panics are logged
// under the task name.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.failures.Add(1)
				r.log.Error("background task panicked", zap.String("task", name), zap.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.failures.Add(1)
			r.log.Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Wait blocks until all scheduled tasks finish. Intended for shutdown
// and tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Failures reports how many tasks have failed or panicked since start.
func (r *Runner) Failures() int64 {
	return r.failures.Load()
}
