// Package clock supplies wall-clock time to the controllers.
//
// The station only trusts the time of day once it is known to be set; the
// system clock of a board without RTC boots in 1970 until NTP catches up.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time and whether the time of day can be trusted.
type Clock interface {
	Now() time.Time
	IsTimeSet() bool
}

// earliestValidYear is the first year considered a synchronized wall clock.
const earliestValidYear = 2024

// System reads the host clock.
type System struct {
	// Location converts times for hour-of-day decisions; nil means time.Local.
	Location *time.Location
}

// Now returns the current local time.
func (s System) Now() time.Time {
	if s.Location != nil {
		return time.Now().In(s.Location)
	}

	return time.Now()
}

// IsTimeSet reports whether the host clock looks synchronized.
func (s System) IsTimeSet() bool {
	return s.Now().Year() >= earliestValidYear
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
	set bool
}

// NewFake returns a fake clock at now; the time of day counts as set.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now, set: true}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

// IsTimeSet reports the configured flag.
func (f *Fake) IsTimeSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.set
}

// Advance moves the fake time forward by d.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)

	return f.now
}

// Set moves the fake time to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = t
}

// SetTimeKnown changes what IsTimeSet reports.
func (f *Fake) SetTimeKnown(known bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.set = known
}
