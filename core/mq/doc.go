// Package mq provides an in-process, keyed publish/subscribe dispatcher:
// producers enqueue values under an arbitrary key, and any number of
// consumers subscribed to that key receive every value in enqueue order,
// delivered by a single background worker per key.
//
// # Architecture
//
// Every active key owns an independent pipeline made of three parts:
//
//   - an unbounded ordered buffer the producers append to;
//   - a broadcaster holding the key's consumers in subscription order;
//   - one worker goroutine that repeatedly drains the buffer as a batch and
//     delivers the batch to every consumer.
//
// The Router is the top-level container. It lazily creates the buffer on the
// first Enqueue or Subscribe for a key, and spawns the worker only on the
// first Subscribe. Keys are fully isolated from each other: a slow consumer
// stalls its own key's pipeline only.
//
// # Ordering Guarantees
//
// Per key, delivery order equals enqueue order. One worker drains one key's
// buffer, so batches are produced and broadcast strictly FIFO. All consumers
// of a key observe the same sequence of values, each consumer in the order it
// subscribed. There is no ordering guarantee across different keys.
//
// # Basic Usage
//
//	router := mq.NewRouter[string, string](
//		mq.WithLogger(logger),
//	)
//	defer router.Close()
//
//	err := router.Subscribe("orders", mq.ConsumerFunc[string, string](
//		func(ctx context.Context, key, value string) error {
//			logger.Info("received", "key", key, "value", value)
//			return nil
//		},
//	))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := router.Enqueue("orders", "order-1"); err != nil {
//		log.Fatal(err)
//	}
//
// # Teardown
//
// Unsubscribe tears down a whole key: it stops the key's buffer, lets the
// worker drain and deliver whatever is already buffered, and blocks until the
// worker goroutine has exited. After Unsubscribe returns, no consumer of that
// key is invoked again, and Enqueue for that key fails with ErrQueueStopped
// until a fresh Subscribe creates a new pipeline. Removing a single consumer
// from a key is deliberately unsupported; teardown is whole-key only.
//
// Close shuts the entire router down: it stops every buffer, then joins every
// worker. With the default configuration Close waits indefinitely; a bounded
// wait can be configured with WithShutdownTimeout, in which case Close
// returns ErrShutdownTimeout if a worker (typically one stuck inside a slow
// consumer) has not exited in time.
//
// # Error Handling
//
// A consumer returning an error, or panicking, never aborts delivery: the
// failure is logged with the offending key and value, and the worker
// continues with the remaining values and consumers. Failed deliveries are
// not retried. Producer-visible failures are synchronous: Enqueue returns
// ErrQueueStopped after teardown and ErrRouterClosed after Close.
//
// # Concurrency Notes
//
// Enqueue never blocks; the buffer is unbounded and there is no backpressure.
// Consumers run synchronously on their key's worker goroutine: a blocking
// consumer delays later consumers, the next batch, and any Unsubscribe or
// Close waiting on that worker.
//
// After Unsubscribe, the stopped buffer is retained so Enqueue for the torn
// down key keeps failing with ErrQueueStopped rather than silently buffering
// into a pipeline with no worker. One stopped buffer is kept per torn-down
// key until a fresh Subscribe replaces it, so workloads that cycle through
// many distinct keys grow the router's key table without bound.
//
// Subscribe racing with Unsubscribe on the same key is a documented hazard:
// the new consumer may attach to a pipeline that is concurrently being torn
// down, in which case the subscription is lost. Callers must not rely on
// Subscribe taking effect while an Unsubscribe for the same key is in flight.
package mq
