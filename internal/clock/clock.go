// Package clock lets timer-driven code (debounce, retry backoff) run
// against a deterministic clock in tests.
//
// Production code uses Real(). Tests use Fake(t0), register timers,
// then move time with Advance.
package clock

import "time"

type Clock interface {
	Now() time.Time

	// After is equivalent to time.After.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can
	// cancel the call.
	AfterFunc(d time.Duration, f func()) *Timer
}

type Timer struct {
	stop func() bool
}

// Stop cancels the timer. It returns false if the timer already
// fired or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stop: timer.Stop}
}
