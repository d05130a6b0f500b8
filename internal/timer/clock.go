// Package timer implements the rest countdown used between sets.
//
// The countdown keeps an absolute deadline and recomputes the remaining time
// on every wake instead of decrementing a counter, so scheduling jitter never
// accumulates into drift.
package timer

import "time"

// Clock abstracts wall time and one-shot scheduling so the countdown can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
	// Schedule runs fn after d. The returned cancel func stops the pending
	// call; it reports whether the call was stopped before it ran.
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Schedule(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
