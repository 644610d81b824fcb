// Package async provides a minimal task/future primitive for tracking
// background goroutines to completion.
//
// Run starts a function in its own goroutine and returns a Task. The Task can
// be awaited (Await), awaited with a deadline (AwaitTimeout), or polled
// without blocking (Completed). This makes "wait until the goroutine has
// actually exited" an explicit, first-class operation instead of an implicit
// side effect of resource release.
//
// Basic usage:
//
//	task := async.Run(ctx, func(ctx context.Context) error {
//		return doWork(ctx)
//	})
//
//	// ... later, block until the goroutine has exited:
//	if err := task.Await(); err != nil {
//		log.Printf("background work failed: %v", err)
//	}
//
// Bounded wait:
//
//	if err := task.AwaitTimeout(30 * time.Second); errors.Is(err, async.ErrTimeout) {
//		log.Println("goroutine still running after 30s")
//	}
//
// A non-positive timeout means wait forever, which keeps AwaitTimeout usable
// as the single join primitive for callers with an optional deadline.
//
// All operations are safe for concurrent use. Run spawns exactly one
// goroutine per call; if the context is already cancelled when the goroutine
// starts, the function is never invoked and the Task completes with the
// context's error.
package async
