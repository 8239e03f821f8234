package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck returns a liveness check that fails when the process
// has more than max goroutines, a cheap proxy for leaks.
func GoroutineCountCheck(max int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return errors.Errorf("too many goroutines: %d > %d", n, max)
		}
		return nil
	}
}
