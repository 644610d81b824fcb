package mq

import (
	"io"
	"log/slog"
	"time"
)

type routerOptions struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// RouterOption configures a Router.
type RouterOption func(*routerOptions)

func defaultRouterOptions() *routerOptions {
	return &routerOptions{
		// No-op logger by default
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdownTimeout: 0,
	}
}

// WithLogger configures structured logging for the router and its workers.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithShutdownTimeout bounds how long Close waits for each worker to exit.
// Zero (the default) means wait forever, which preserves the guarantee that
// Close returns only after every worker has exited. Unsubscribe always waits
// unconditionally regardless of this setting.
func WithShutdownTimeout(timeout time.Duration) RouterOption {
	return func(o *routerOptions) {
		if timeout > 0 {
			o.shutdownTimeout = timeout
		}
	}
}
