package mq

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/mqm/pkg/logger"
)

// broadcaster holds one key's consumers in subscription order and delivers
// drained batches to them. It is owned by the key's dispatcher; the consumer
// list is append-only, whole-key teardown is the only removal.
type broadcaster[K comparable, V any] struct {
	key       K
	mu        sync.Mutex
	consumers []Consumer[K, V]
	log       *slog.Logger
	metrics   *routerMetrics
}

func (b *broadcaster[K, V]) subscribe(c Consumer[K, V]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consumers = append(b.consumers, c)
}

// dispatch delivers the batch to every consumer in subscription order, each
// consumer receiving every value in batch order. Consumer failures are
// contained per invocation: an error or panic is logged with the offending
// key and value, and delivery continues with the rest of the batch.
//
// The consumer list is snapshotted under the lock, then consumers run
// unlocked so a consumer may itself call Subscribe without deadlocking. A
// consumer added mid-dispatch starts receiving from the next batch.
func (b *broadcaster[K, V]) dispatch(ctx context.Context, batch []V) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	consumers := slices.Clone(b.consumers)
	b.mu.Unlock()

	for _, c := range consumers {
		for _, v := range batch {
			if err := b.deliver(ctx, c, v); err != nil {
				b.metrics.consumerErrors.Add(1)
				b.log.ErrorContext(ctx, "consumer error",
					slog.Any("key", b.key),
					slog.Any("value", v),
					logger.Error(err))
				continue
			}
			b.metrics.delivered.Add(1)
		}
	}
}

// deliver invokes one consumer for one value, converting panics to errors so
// a misbehaving consumer cannot kill the worker.
func (b *broadcaster[K, V]) deliver(ctx context.Context, c Consumer[K, V], v V) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in consumer: %v", r)
		}
	}()

	return c.Consume(ctx, b.key, v)
}
