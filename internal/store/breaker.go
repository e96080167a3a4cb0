package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vango-dev/engine/internal/errors"
)

// newBreaker returns a gobreaker configured to trip after 3 consecutive
// failures and reset after 30 seconds in the open state. Misses and
// cancelled contexts do not count as failures.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				stderrors.Is(err, ErrNotFound) ||
				stderrors.Is(err, context.Canceled)
		},
	})
}

// guard runs fn through cb. An open breaker maps to E302 and backend
// failures to E301; ErrNotFound passes through.
func guard(cb *gobreaker.CircuitBreaker, op, key string, fn func() ([]byte, error)) ([]byte, error) {
	v, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		switch {
		case stderrors.Is(err, ErrNotFound), stderrors.Is(err, context.Canceled):
			return nil, err
		case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, errors.New("E302").WithDetail(cb.Name()).Wrap(err)
		default:
			return nil, errors.New("E301").WithDetail(op + " " + key).Wrap(err)
		}
	}
	data, _ := v.([]byte)
	return data, nil
}
