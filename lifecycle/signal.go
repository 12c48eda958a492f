// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// WithSignals returns a context cancelled on SIGINT or SIGTERM. The returned
// cancel function must be called to release the signal handler.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return withSignals(ctx, syscall.SIGINT, syscall.SIGTERM)
}

func withSignals(ctx context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	logger := zerolog.Ctx(ctx)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, sigs...)

	go func() {
		defer signal.Stop(signals)

		select {
		case <-ctx.Done():
		case sig := <-signals:
			logger.Info().Str("signal", sig.String()).Msgf("Interrupted by signal: %s", sig)
			cancel()
		}
	}()

	return ctx, cancel
}
