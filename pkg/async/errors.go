package async

import "errors"

// ErrTimeout is returned by AwaitTimeout when the task has not completed
// within the given duration. The underlying goroutine keeps running.
var ErrTimeout = errors.New("async: await timed out")
