package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"
)

func TestDeferredRunner_RunsAndWaits(t *testing.T) {
	d := NewDeferredRunner(time.Second, zap.NewNop())

	var ran atomic.Bool
	d.Run("task", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	d.Wait()
	assert.True(t, ran.Load())
}

func TestDeferredRunner_SwallowsErrors(t *testing.T) {
	d := NewDeferredRunner(time.Second, zap.NewNop())

	d.Run("task", func(ctx context.Context) error {
		return errors.New("boom")
	})

	d.Wait()
}

func TestDeferredRunner_RecoverPanic(t *testing.T) {
	d := NewDeferredRunner(time.Second, zap.NewNop())

	d.Run("task", func(ctx context.Context) error {
		panic("boom")
	})

	d.Wait()
}

func TestDeferredRunner_ContextHasDeadline(t *testing.T) {
	d := NewDeferredRunner(time.Second, zap.NewNop())

	var hasDeadline atomic.Bool
	d.Run("task", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		return nil
	})

	d.Wait()
	assert.True(t, hasDeadline.Load())
}
