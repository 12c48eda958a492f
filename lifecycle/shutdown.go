// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/optable/easybytes/errors"
)

type (
	// GracefulShutdown is implemented by components that must be terminated
	// explicitly, e.g. flushing counters or buffers to permanent storage when
	// a command exits. Shutdown should respect the context deadline.
	GracefulShutdown interface {
		Shutdown(context.Context) error
	}
)

// MaybeGracefulShutdown takes an object and invokes Shutdown if the object
// implements GracefulShutdown. Otherwise it returns ctx.Err().
func MaybeGracefulShutdown(ctx context.Context, i interface{}) error {
	if s, ok := i.(GracefulShutdown); ok {
		return s.Shutdown(ctx)
	}

	return ctx.Err()
}

// ShutdownAll shuts every component down in order, within timeout, and
// returns all failures. It runs on a fresh context so that components still
// get a chance to flush after the main context was cancelled.
func ShutdownAll(ctx context.Context, timeout time.Duration, components ...GracefulShutdown) error {
	logger := zerolog.Ctx(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	shutdownCtx = logger.WithContext(shutdownCtx)

	var errs []error
	for _, c := range components {
		if err := c.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Unclean shutdown")
			errs = append(errs, err)
		}
	}
	logger.Debug().Int("components", len(components)).Msg("Shutdown sequence completed")

	return pkgerrors.NewErrors(errs...)
}
