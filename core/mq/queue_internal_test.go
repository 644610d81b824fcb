package mq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushDrainOrder(t *testing.T) {
	t.Parallel()

	q := newQueue[int]()
	for i := range 5 {
		require.NoError(t, q.push(i))
	}

	batch, stopped := q.drain()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, batch)
	assert.False(t, stopped)
}

func TestQueueDrainBlocksUntilPush(t *testing.T) {
	t.Parallel()

	q := newQueue[string]()
	got := make(chan []string)

	go func() {
		batch, _ := q.drain()
		got <- batch
	}()

	// Give the drainer a chance to block before waking it.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.push("wake"))

	select {
	case batch := <-got:
		assert.Equal(t, []string{"wake"}, batch)
	case <-time.After(time.Second):
		t.Fatal("drain did not return after push")
	}
}

func TestQueueStopWakesEmptyDrain(t *testing.T) {
	t.Parallel()

	q := newQueue[int]()
	done := make(chan struct{})

	go func() {
		batch, stopped := q.drain()
		assert.Empty(t, batch)
		assert.True(t, stopped)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not return after stop")
	}
}

func TestQueuePushAfterStop(t *testing.T) {
	t.Parallel()

	q := newQueue[int]()
	q.stop()

	require.ErrorIs(t, q.push(1), ErrQueueStopped)
	assert.True(t, q.isStopped())
}

func TestQueueFinalDrainAfterStop(t *testing.T) {
	t.Parallel()

	q := newQueue[int]()
	require.NoError(t, q.push(1))
	require.NoError(t, q.push(2))
	q.stop()

	// Values buffered before the stop must still come out.
	batch, stopped := q.drain()
	assert.Equal(t, []int{1, 2}, batch)
	assert.True(t, stopped)

	batch, stopped = q.drain()
	assert.Empty(t, batch)
	assert.True(t, stopped)
}

func TestQueueStopIdempotent(t *testing.T) {
	t.Parallel()

	q := newQueue[int]()
	q.stop()
	q.stop()

	assert.True(t, q.isStopped())
}
