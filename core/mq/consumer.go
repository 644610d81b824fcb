package mq

import "context"

// Consumer receives values delivered for a key. Consume is called once per
// value, in enqueue order, on the key's worker goroutine. A returned error is
// logged and delivery continues; it is never propagated to the producer.
type Consumer[K comparable, V any] interface {
	Consume(ctx context.Context, key K, value V) error
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc[K comparable, V any] func(ctx context.Context, key K, value V) error

// Consume implements the Consumer interface.
func (f ConsumerFunc[K, V]) Consume(ctx context.Context, key K, value V) error {
	return f(ctx, key, value)
}
