package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DeferredRunner executes work detached from the request/response lifecycle.
// It is the one place fire-and-forget is allowed: failures are logged and
// swallowed because the caller has already received their answer.
type DeferredRunner struct {
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewDeferredRunner(timeout time.Duration, logger *zap.Logger) *DeferredRunner {
	return &DeferredRunner{
		timeout: timeout,
		logger:  logger,
	}
}

// Run schedules fn on its own goroutine with a fresh context; the caller
// never waits on it.
func (d *DeferredRunner) Run(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Deferred task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.logger.Error("Deferred task failed",
				zap.String("task", name),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all scheduled tasks finish. Used on shutdown so pending
// transcript writes are not dropped.
func (d *DeferredRunner) Wait() {
	d.wg.Wait()
}
