package mq

import "sync"

// queue is the unbounded ordered buffer for one key. Many goroutines may
// push concurrently; exactly one worker drains. A single mutex plus a
// condition variable guard both the buffer and the stopped flag.
type queue[V any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []V
	stopped bool
}

func newQueue[V any]() *queue[V] {
	q := &queue[V]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends v and wakes the drainer. Fails with ErrQueueStopped once the
// queue has been stopped.
func (q *queue[V]) push(v V) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return ErrQueueStopped
	}

	q.buf = append(q.buf, v)
	q.cond.Signal()
	return nil
}

// stop marks the queue stopped and wakes the drainer even if the buffer is
// empty, so a worker blocked on an empty queue returns immediately.
// Idempotent.
func (q *queue[V]) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	q.stopped = true
	q.cond.Broadcast()
}

// drain blocks until the buffer is non-empty or the queue is stopped, then
// takes ownership of the entire buffer contents and reports whether stop was
// observed. After a stop, the final drain still returns whatever was
// buffered. Designed for exactly one concurrent drainer.
func (q *queue[V]) drain() ([]V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.buf) == 0 && !q.stopped {
		q.cond.Wait()
	}

	batch := q.buf
	q.buf = nil
	return batch, q.stopped
}

func (q *queue[V]) isStopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}
