package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by the cache backends and the NDEx fetch paths
// built on top of them.
var (
	// ErrNotFound means the requested network does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork covers transport failures: timeouts, refused
	// connections, 5xx responses.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error as transient. RetryWithBackoff retries
// only errors carrying this mark; everything else fails the operation on
// the first attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a RetryableError anywhere in
// its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryAttempts bounds RetryWithBackoff. NDEx fetches are the main
// caller; three tries rides out a transient 5xx without stalling an
// interactive command for long.
const retryAttempts = 3

// RetryWithBackoff runs fn until it succeeds, fails permanently, or the
// attempt budget is spent. The wait between attempts starts at one second
// and doubles; a cancelled ctx cuts the wait short and returns ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := time.Second

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == retryAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
}
