// Package timer provides periodic interrupt sources for the controllers.
//
// A Timer models a hardware timer: one callback registration at a time, a
// programmable period capped at MaxPeriod, and a Reset that restarts the
// current period. Callbacks run on a goroutine owned by the timer, so they
// must only touch state that is safe to share with the main loop.
package timer

import (
	"sync"
	"time"
)

// Timer is a periodic interrupt source.
type Timer interface {
	// Arm replaces any registration with fn fired every interval.
	// Intervals above MaxPeriod are truncated to it.
	Arm(interval time.Duration, fn func())
	// Disarm stops firing. It does not wait for a callback in flight.
	Disarm()
	// Reset restarts the current period from now.
	Reset()
	// MaxPeriod is the longest interval the timer can be programmed with.
	MaxPeriod() time.Duration
}

// Periodic is a Timer backed by time.Ticker.
type Periodic struct {
	// maxPeriod caps programmed intervals.
	maxPeriod time.Duration

	// mu protects the fields below.
	mu       sync.Mutex
	ticker   *time.Ticker
	stop     chan struct{}
	interval time.Duration
}

// NewPeriodic creates a disarmed timer with the given maximum period.
func NewPeriodic(maxPeriod time.Duration) *Periodic {
	return &Periodic{maxPeriod: maxPeriod}
}

// Arm starts firing fn every interval on a dedicated goroutine.
func (p *Periodic) Arm(interval time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.disarmLocked()

	if interval <= 0 || fn == nil {
		return
	}

	if p.maxPeriod > 0 && interval > p.maxPeriod {
		interval = p.maxPeriod
	}

	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	p.ticker = ticker
	p.stop = stop
	p.interval = interval

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Both channels may be ready; never fire after Disarm returned.
				select {
				case <-stop:
					return
				default:
				}

				fn()
			}
		}
	}()
}

// Disarm stops the current registration, if any.
func (p *Periodic) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.disarmLocked()
}

// Reset restarts the current period.
func (p *Periodic) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		p.ticker.Reset(p.interval)
	}
}

// MaxPeriod returns the programmable maximum.
func (p *Periodic) MaxPeriod() time.Duration {
	return p.maxPeriod
}

func (p *Periodic) disarmLocked() {
	if p.stop == nil {
		return
	}

	close(p.stop)
	p.ticker.Stop()

	p.stop = nil
	p.ticker = nil
	p.interval = 0
}
