package mq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mqm/pkg/async"
)

// resolveFunc re-resolves the worker's non-owning references to its queue and
// broadcaster through the router's maps. Resolution fails once the router has
// released either side, which is the worker's teardown signal.
type resolveFunc[K comparable, V any] func() (*queue[V], *broadcaster[K, V], bool)

// dispatcher owns one key's broadcaster and the worker goroutine that drains
// that key's queue into it. The router holds the only owning reference; the
// worker itself only ever sees transient references obtained per iteration.
type dispatcher[K comparable, V any] struct {
	key      K
	bcast    *broadcaster[K, V]
	workerID uuid.UUID
	log      *slog.Logger

	mu   sync.Mutex
	task *async.Task
}

func newDispatcher[K comparable, V any](key K, log *slog.Logger, metrics *routerMetrics) *dispatcher[K, V] {
	return &dispatcher[K, V]{
		key: key,
		bcast: &broadcaster[K, V]{
			key:     key,
			log:     log,
			metrics: metrics,
		},
		workerID: uuid.New(),
		log:      log,
	}
}

// start launches the worker goroutine. Idempotent: the router starts a
// dispatcher exactly once, on the Subscribe that created it, so a second key
// never gets a second worker.
func (d *dispatcher[K, V]) start(ctx context.Context, resolve resolveFunc[K, V], metrics *routerMetrics) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.task != nil {
		return
	}

	d.task = async.Run(ctx, func(ctx context.Context) error {
		metrics.activeWorkers.Add(1)
		defer metrics.activeWorkers.Add(-1)

		d.log.DebugContext(ctx, "worker started",
			slog.String("worker_id", d.workerID.String()),
			slog.Any("key", d.key))

		d.run(ctx, resolve)

		d.log.DebugContext(ctx, "worker exited",
			slog.String("worker_id", d.workerID.String()),
			slog.Any("key", d.key))
		return nil
	})
}

// run is the worker loop. Each iteration re-resolves the queue and
// broadcaster fresh; if either is gone the owner has released it and the
// worker exits without further action. Otherwise it blocks draining a batch,
// broadcasts it, and exits after the dispatch that observed the stop flag —
// so values buffered before a stop are still delivered.
func (d *dispatcher[K, V]) run(ctx context.Context, resolve resolveFunc[K, V]) {
	for {
		q, b, ok := resolve()
		if !ok {
			return
		}

		batch, stopped := q.drain()
		b.dispatch(ctx, batch)

		if stopped {
			return
		}
	}
}

// join blocks until the worker goroutine has exited. A non-positive timeout
// waits forever; otherwise async.ErrTimeout is returned if the worker is
// still running when the timeout elapses. A dispatcher whose worker never
// started joins immediately.
func (d *dispatcher[K, V]) join(timeout time.Duration) error {
	d.mu.Lock()
	task := d.task
	d.mu.Unlock()

	if task == nil {
		return nil
	}

	return task.AwaitTimeout(timeout)
}
