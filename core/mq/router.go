package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mqm/pkg/logger"
)

// Router is the top-level keyed container: it owns one queue and one
// dispatcher per active key and governs their creation and teardown ordering.
// The queues map and the dispatchers map are locked independently, so
// operations on unrelated keys never serialize; the cost is that Subscribe,
// Enqueue, and Unsubscribe on the same key from different goroutines are not
// jointly atomic across both maps (see the package documentation for the
// resulting Subscribe/Unsubscribe hazard).
type Router[K comparable, V any] struct {
	queuesMu sync.Mutex
	queues   map[K]*queue[V]

	dispatchersMu sync.Mutex
	dispatchers   map[K]*dispatcher[K, V]

	closed atomic.Bool
	log    *slog.Logger

	shutdownTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	metrics *routerMetrics
}

// routerMetrics holds the atomic counters shared between the router and its
// per-key broadcasters and workers.
type routerMetrics struct {
	enqueued       atomic.Int64
	delivered      atomic.Int64
	consumerErrors atomic.Int64
	activeWorkers  atomic.Int32
}

// RouterStats provides observability metrics for monitoring and debugging.
type RouterStats struct {
	Enqueued       int64 // Total values accepted by Enqueue
	Delivered      int64 // Total successful consumer deliveries (per value, per consumer)
	ConsumerErrors int64 // Total failed consumer invocations (errors and panics)
	ActiveWorkers  int32 // Worker goroutines currently running
	ActiveKeys     int   // Keys with a live dispatcher
	IsRunning      bool  // False after Close
}

// NewRouter creates a router with the given options.
//
// Example:
//
//	router := mq.NewRouter[string, []byte](
//		mq.WithLogger(logger),
//		mq.WithShutdownTimeout(30*time.Second),
//	)
func NewRouter[K comparable, V any](opts ...RouterOption) *Router[K, V] {
	options := defaultRouterOptions()
	for _, opt := range opts {
		opt(options)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Router[K, V]{
		queues:          make(map[K]*queue[V]),
		dispatchers:     make(map[K]*dispatcher[K, V]),
		log:             options.logger,
		shutdownTimeout: options.shutdownTimeout,
		ctx:             ctx,
		cancel:          cancel,
		metrics:         &routerMetrics{},
	}
}

// NewRouterFromConfig creates a router from configuration. Additional options
// override config values.
func NewRouterFromConfig[K comparable, V any](cfg Config, opts ...RouterOption) *Router[K, V] {
	allOpts := append([]RouterOption{
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)

	return NewRouter[K, V](allOpts...)
}

// Enqueue appends value to the key's queue, creating the queue on first use.
// It never blocks: the buffer is unbounded and there is no backpressure.
// Values enqueued before any Subscribe for the key accumulate until a worker
// is spawned. Fails with ErrQueueStopped once the key has been unsubscribed
// (until a fresh Subscribe creates a new pipeline) and with ErrRouterClosed
// after Close.
func (r *Router[K, V]) Enqueue(key K, value V) error {
	if r.closed.Load() {
		return ErrRouterClosed
	}

	if err := r.getOrCreateQueue(key).push(value); err != nil {
		return err
	}

	r.metrics.enqueued.Add(1)
	return nil
}

// Subscribe registers consumer for key. The first Subscribe for a key creates
// the pipeline and spawns its worker; later subscribers only append to the
// consumer list and begin receiving from the next batch. Consumers are never
// deduplicated, and there is no way to remove a single consumer — teardown is
// whole-key via Unsubscribe.
func (r *Router[K, V]) Subscribe(key K, consumer Consumer[K, V]) error {
	if consumer == nil {
		return ErrNilConsumer
	}
	if r.closed.Load() {
		return ErrRouterClosed
	}

	d, created := r.getOrCreateDispatcher(key)
	d.bcast.subscribe(consumer)

	if created {
		// The queue must exist, and be live, before the worker's first
		// resolve; a stopped queue left over from a previous pipeline is
		// replaced here.
		r.ensureLiveQueue(key)
		d.start(r.ctx, r.resolve(key), r.metrics)

		r.log.DebugContext(r.ctx, "pipeline created", slog.Any("key", key))
	}

	return nil
}

// Unsubscribe tears down the key's whole pipeline: it stops the queue so the
// worker observes termination and delivers what is already buffered, then
// blocks until the worker goroutine has exited. After Unsubscribe returns no
// consumer of the key is invoked again. Calling it twice, or for a key that
// was never active, is a no-op.
func (r *Router[K, V]) Unsubscribe(key K) {
	start := time.Now()

	r.removeQueue(key)
	r.removeDispatcher(key)

	r.log.DebugContext(r.ctx, "pipeline torn down",
		slog.Any("key", key),
		logger.Duration(time.Since(start)))
}

// Close shuts the router down: it stops every queue, then joins every worker,
// then releases all state. Close blocks until every worker has exited, or —
// when a shutdown timeout is configured — returns ErrShutdownTimeout once the
// timeout elapses, leaving unfinished workers to drain on their own. A second
// Close returns ErrRouterClosed.
func (r *Router[K, V]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrRouterClosed
	}

	start := time.Now()

	r.queuesMu.Lock()
	for _, q := range r.queues {
		q.stop()
	}
	r.queuesMu.Unlock()

	// Join before releasing the maps: with every queue stopped, each worker
	// drains and broadcasts its final batch and then exits. Clearing the
	// maps first would fail the workers' resolution and drop those batches.
	r.dispatchersMu.Lock()
	dispatchers := make([]*dispatcher[K, V], 0, len(r.dispatchers))
	for _, d := range r.dispatchers {
		dispatchers = append(dispatchers, d)
	}
	r.dispatchersMu.Unlock()

	g := new(errgroup.Group)
	for _, d := range dispatchers {
		g.Go(func() error {
			if err := d.join(r.shutdownTimeout); err != nil {
				return fmt.Errorf("%w: worker for key %v still running", ErrShutdownTimeout, d.key)
			}
			return nil
		})
	}
	err := g.Wait()

	// Releasing the maps now also serves the timeout path: a worker
	// abandoned by the deadline exits via failed resolution once its
	// current consumer call returns.
	r.dispatchersMu.Lock()
	r.dispatchers = make(map[K]*dispatcher[K, V])
	r.dispatchersMu.Unlock()

	r.queuesMu.Lock()
	r.queues = make(map[K]*queue[V])
	r.queuesMu.Unlock()

	r.cancel()

	r.log.Info("router closed",
		slog.Int("workers_joined", len(dispatchers)),
		logger.Duration(time.Since(start)),
		logger.Error(err))

	return err
}

// Stats returns current router statistics for observability and monitoring.
// Safe to call at any time.
func (r *Router[K, V]) Stats() RouterStats {
	r.dispatchersMu.Lock()
	activeKeys := len(r.dispatchers)
	r.dispatchersMu.Unlock()

	return RouterStats{
		Enqueued:       r.metrics.enqueued.Load(),
		Delivered:      r.metrics.delivered.Load(),
		ConsumerErrors: r.metrics.consumerErrors.Load(),
		ActiveWorkers:  r.metrics.activeWorkers.Load(),
		ActiveKeys:     activeKeys,
		IsRunning:      !r.closed.Load(),
	}
}

// Healthcheck validates that the router is operational. Returns nil while the
// router is running and an error wrapping ErrRouterClosed after Close.
// Suitable for use with health check frameworks:
//
//	healthSrv.AddCheck("mq-router", router.Healthcheck)
func (r *Router[K, V]) Healthcheck(ctx context.Context) error {
	if r.closed.Load() {
		return errors.Join(ErrHealthcheckFailed, ErrRouterClosed)
	}
	return nil
}

// getOrCreateQueue returns the existing queue for key, or atomically inserts
// a new one. The returned queue may already be stopped if the key has been
// unsubscribed; Enqueue surfaces that as ErrQueueStopped.
func (r *Router[K, V]) getOrCreateQueue(key K) *queue[V] {
	r.queuesMu.Lock()
	defer r.queuesMu.Unlock()

	q, ok := r.queues[key]
	if !ok {
		q = newQueue[V]()
		r.queues[key] = q
	}
	return q
}

// ensureLiveQueue installs a fresh queue for key if none exists or the
// existing one is stopped. Called only when a new pipeline is being created,
// so at most one queue exists per key at any instant.
func (r *Router[K, V]) ensureLiveQueue(key K) {
	r.queuesMu.Lock()
	defer r.queuesMu.Unlock()

	if q, ok := r.queues[key]; ok && !q.isStopped() {
		return
	}
	r.queues[key] = newQueue[V]()
}

// removeQueue stops the key's queue so producers fail fast and the worker
// observes termination. The stopped queue stays in the map until a new
// pipeline replaces it: that is what lets Enqueue distinguish "torn down"
// from "never existed" and reject late values instead of silently buffering
// them.
func (r *Router[K, V]) removeQueue(key K) {
	r.queuesMu.Lock()
	defer r.queuesMu.Unlock()

	if q, ok := r.queues[key]; ok {
		q.stop()
	}
}

// removeDispatcher synchronously blocks until the key's worker goroutine has
// exited, then erases the dispatcher entry, releasing the router's only
// owning reference. The join comes first: the caller has already stopped the
// key's queue, so the worker is guaranteed to drain and broadcast the final
// batch before exiting — erasing the entry earlier would fail the worker's
// resolution and let it exit without that final dispatch, dropping buffered
// values.
func (r *Router[K, V]) removeDispatcher(key K) {
	r.dispatchersMu.Lock()
	d, ok := r.dispatchers[key]
	r.dispatchersMu.Unlock()

	if !ok {
		return
	}

	// Unsubscribe has no timeout path: a worker stuck inside a slow consumer
	// delays this indefinitely.
	_ = d.join(0)

	// A concurrent Unsubscribe for the same key may have raced ahead and a
	// concurrent Subscribe may already have installed a fresh dispatcher;
	// only erase the entry this call joined.
	r.dispatchersMu.Lock()
	if cur, ok := r.dispatchers[key]; ok && cur == d {
		delete(r.dispatchers, key)
	}
	r.dispatchersMu.Unlock()
}

// getOrCreateDispatcher returns the existing dispatcher for key, or
// atomically inserts a new one and reports created=true. The caller starts
// the worker only when created, so a key never gets a second worker.
func (r *Router[K, V]) getOrCreateDispatcher(key K) (*dispatcher[K, V], bool) {
	r.dispatchersMu.Lock()
	defer r.dispatchersMu.Unlock()

	d, ok := r.dispatchers[key]
	if !ok {
		d = newDispatcher[K, V](key, r.log, r.metrics)
		r.dispatchers[key] = d
	}
	return d, !ok
}

// resolve returns the worker's re-resolution function. Each lookup takes the
// respective map lock only for the lookup itself, never across the worker's
// blocking drain or dispatch.
func (r *Router[K, V]) resolve(key K) resolveFunc[K, V] {
	return func() (*queue[V], *broadcaster[K, V], bool) {
		r.queuesMu.Lock()
		q, ok := r.queues[key]
		r.queuesMu.Unlock()
		if !ok {
			return nil, nil, false
		}

		r.dispatchersMu.Lock()
		d, ok := r.dispatchers[key]
		r.dispatchersMu.Unlock()
		if !ok {
			return nil, nil, false
		}

		return q, d.bcast, true
	}
}
