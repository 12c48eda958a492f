// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package lifecycle

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/optable/easybytes/errors"
)

type (
	ShutdownFn func(context.Context) error
)

func (fn ShutdownFn) Shutdown(ctx context.Context) error {
	return fn(ctx)
}

var (
	// A basic GracefulShutdown that delegates to ctx.Err().
	basic = ShutdownFn(func(ctx context.Context) error { return ctx.Err() })
	// A GracefulShutdown that always fail.
	errShutdown  = errors.New("Always error on shutdown")
	failShutdown = ShutdownFn(func(ctx context.Context) error { return errShutdown })
)

func TestGracefulShutdown(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, basic.Shutdown(ctx))
	assert.ErrorIs(t, failShutdown.Shutdown(ctx), errShutdown)

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	assert.ErrorIs(t, basic.Shutdown(ctx), context.Canceled)
}

func TestMaybeGracefulShutdown(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, MaybeGracefulShutdown(ctx, basic))
	assert.ErrorIs(t, MaybeGracefulShutdown(ctx, failShutdown), errShutdown)

	aMap := make(map[string]string)
	assert.NoError(t, MaybeGracefulShutdown(ctx, aMap))

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	assert.ErrorIs(t, MaybeGracefulShutdown(ctx, basic), context.Canceled)
	assert.ErrorIs(t, MaybeGracefulShutdown(ctx, aMap), context.Canceled)
}

func TestShutdownAllRunsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	counting := ShutdownFn(func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})

	assert.NoError(t, ShutdownAll(ctx, time.Second, counting, counting))
	assert.Equal(t, 2, calls)

	err := ShutdownAll(ctx, time.Second, failShutdown, counting, failShutdown)
	assert.Len(t, pkgerrors.All(err), 2)
	assert.ErrorIs(t, err, errShutdown)
	assert.Equal(t, 3, calls)
}

func TestWithSignals(t *testing.T) {
	ctx, cancel := withSignals(context.Background(), syscall.SIGUSR1)
	defer cancel()

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled by the signal")
	}

	ctx, cancel = WithSignals(context.Background())
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
