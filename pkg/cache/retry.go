package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth repeating: a dropped connection,
// a 5xx or a rate limit.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff repeats transient failures with a doubling delay.
type Backoff struct {
	// Attempts is the total number of calls, at least one.
	Attempts int

	// Initial is the wait after the first failure.
	Initial time.Duration

	// Max caps the wait. Zero means uncapped.
	Max time.Duration
}

// DefaultBackoff is used for provider lookups: 1s, then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 10 * time.Second}

// Do calls fn until it succeeds, returns an error not marked retryable, or
// runs out of attempts. In the last case the final error is returned.
// Cancelling ctx while waiting returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	wait := b.Initial
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
		if b.Max > 0 && wait > b.Max {
			wait = b.Max
		}
	}
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
