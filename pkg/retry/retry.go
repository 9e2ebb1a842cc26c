// Package retry re-runs operations that fail with transient errors, such as a
// database that is still starting up.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds how often and how patiently an operation is retried. The delay
// doubles after every failed attempt.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default is three attempts starting at half a second.
var Default = Policy{Attempts: 3, Delay: 500 * time.Millisecond}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth another attempt. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or an error it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Do runs fn until it succeeds, returns an error not marked [Transient], or
// the attempts are used up. The last error is returned unwrapped; a cancelled
// ctx returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay

	var last error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		last = err
		if !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	var t *transientError
	if errors.As(last, &t) {
		return t.err
	}
	return last
}
