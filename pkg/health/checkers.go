package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// MaxGoroutines fails when more than limit goroutines are running.
func MaxGoroutines(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines, limit %d", n, limit)
		}
		return nil
	}
}

// MaxGCPause fails when any recorded stop-the-world pause exceeds limit.
func MaxGCPause(limit time.Duration) CheckFunc {
	return func(context.Context) error {
		var s debug.GCStats
		debug.ReadGCStats(&s)
		for _, p := range s.Pause {
			if p > limit {
				return errors.Errorf("gc pause %s, limit %s", p, limit)
			}
		}
		return nil
	}
}

// MinCount fails while count() is below minimum. what names the counted
// items in the error.
func MinCount(what string, minimum int, count func() int) CheckFunc {
	return func(context.Context) error {
		if n := count(); n < minimum {
			return errors.Errorf("%d %s, need at least %d", n, what, minimum)
		}
		return nil
	}
}
