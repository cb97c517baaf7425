package errors

import (
	"context"
	"errors"
	"time"
)

// Backoff paces the retries of a transient failure. Delay doubles after
// every failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

var (
	// FetchBackoff is used for remote image requests.
	FetchBackoff = Backoff{Attempts: 3, Delay: time.Second}

	// CacheBackoff is used for shared cache backends. A cache that stays
	// unavailable is reported and the run continues uncached.
	CacheBackoff = Backoff{Attempts: 3, Delay: 50 * time.Millisecond}
)

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. It returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Retry calls fn until it succeeds, fails with an error not marked
// [Transient], or runs out of attempts. The last error is returned, or
// ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsTransient(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
