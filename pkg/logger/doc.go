// Package logger provides small slog attribute helpers shared across the
// module.
//
// The helpers use the empty-Attr pattern for nil safety: logging a nil error
// with logger.Error produces no attribute instead of a noisy "error=<nil>"
// field, so call sites never need explicit nil checks.
//
//	log.Info("pipeline torn down",
//		logger.Duration(elapsed),
//		logger.Error(err), // dropped when err is nil
//	)
package logger
