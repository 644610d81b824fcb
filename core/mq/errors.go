package mq

import "errors"

var (
	// ErrQueueStopped is returned by Enqueue when the key's queue has been
	// torn down by Unsubscribe and no new pipeline has been created since.
	ErrQueueStopped = errors.New("queue is stopped")

	// ErrRouterClosed is returned by Enqueue and Subscribe after Close.
	ErrRouterClosed = errors.New("router is closed")

	// ErrNilConsumer is returned by Subscribe when the consumer is nil.
	ErrNilConsumer = errors.New("consumer is nil")

	// ErrShutdownTimeout is returned by Close when a worker has not exited
	// within the configured shutdown timeout.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

	// ErrHealthcheckFailed is the base error for failed health checks.
	ErrHealthcheckFailed = errors.New("healthcheck failed")
)
