package async

import (
	"context"
	"time"
)

// Task tracks a background goroutine started by Run. The zero value is not
// usable; always obtain a Task from Run.
type Task struct {
	err  error
	done chan struct{}
}

// Run executes fn in a new goroutine and returns a Task tracking its
// completion. The Task completes when fn returns; its error is fn's return
// value. If ctx is already cancelled when the goroutine starts, fn is never
// invoked and the Task completes with the context's error.
func Run(ctx context.Context, fn func(context.Context) error) *Task {
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		if err := ctx.Err(); err != nil {
			t.err = err
			return
		}

		t.err = fn(ctx)
	}()

	return t
}

// Await blocks until the goroutine has exited and returns the function's
// error.
func (t *Task) Await() error {
	<-t.done
	return t.err
}

// AwaitTimeout blocks until the goroutine has exited or the timeout elapses.
// A non-positive timeout waits forever. On timeout it returns ErrTimeout and
// the goroutine is left running.
func (t *Task) AwaitTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return t.Await()
	}

	select {
	case <-t.done:
		return t.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// Completed reports whether the goroutine has exited, without blocking.
func (t *Task) Completed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
