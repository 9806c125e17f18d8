package timer

import (
	"sync"
	"time"
)

// Fake is a Timer fired by hand from tests.
type Fake struct {
	mu        sync.Mutex
	maxPeriod time.Duration
	fn        func()
	interval  time.Duration
	arms      int
	resets    int
}

// NewFake creates a disarmed fake timer.
func NewFake(maxPeriod time.Duration) *Fake {
	return &Fake{maxPeriod: maxPeriod}
}

// Arm records the registration.
func (f *Fake) Arm(interval time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if interval <= 0 || fn == nil {
		f.fn, f.interval = nil, 0

		return
	}

	if f.maxPeriod > 0 && interval > f.maxPeriod {
		interval = f.maxPeriod
	}

	f.fn = fn
	f.interval = interval
	f.arms++
}

// Disarm drops the registration.
func (f *Fake) Disarm() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fn, f.interval = nil, 0
}

// Reset counts the call.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resets++
}

// MaxPeriod returns the configured maximum.
func (f *Fake) MaxPeriod() time.Duration {
	return f.maxPeriod
}

// Fire invokes the registered callback n times; it stops early once disarmed.
func (f *Fake) Fire(n int) {
	for range n {
		f.mu.Lock()
		fn := f.fn
		f.mu.Unlock()

		if fn == nil {
			return
		}

		fn()
	}
}

// Armed reports whether a callback is registered.
func (f *Fake) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fn != nil
}

// Interval returns the programmed interval, zero when disarmed.
func (f *Fake) Interval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.interval
}

// Arms returns how many times the timer was armed.
func (f *Fake) Arms() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.arms
}

// Resets returns how many times Reset was called.
func (f *Fake) Resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.resets
}
