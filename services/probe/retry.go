package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultAttempts keeps the historical behavior of seven tries with
// fibonacci waits between them.
const DefaultAttempts = 7

// UnreachableError reports a backing service that never accepted a
// connection within the retry budget.
type UnreachableError struct {
	Service string
	Err     error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s is unreachable: %v", e.Service, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// retry runs fn up to attempts times, sleeping a fibonacci-growing
// interval between tries (baseWait times 1, 2, 3, 5, 8, ...). Context
// cancellation cuts the wait short.
func retry(ctx context.Context, logger *zap.Logger, service string, attempts int, baseWait time.Duration, fn func() error) error {
	waits := fibWaits(attempts - 1)

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		wait := time.Duration(waits[i]) * baseWait
		logger.Debug("connection check failed, retrying",
			zap.String("service", service),
			zap.Int("attempt", i+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return &UnreachableError{Service: service, Err: ctx.Err()}
		}
	}

	return &UnreachableError{Service: service, Err: err}
}

// fibWaits returns the first n fibonacci numbers, starting 1, 2.
func fibWaits(n int) []int {
	waits := make([]int, 0, n)
	a, b := 1, 2
	for i := 0; i < n; i++ {
		waits = append(waits, a)
		a, b = b, a+b
	}
	return waits
}
