// Package gpio abstracts the station pins.
// The real implementation uses the Linux GPIO character device.
// The simulated implementation keeps pin state in memory and lets tests
// (or the daemon without hardware) inject sensor edges.
package gpio

import "fmt"

// Output names a digital output line.
type Output int

// Digital outputs driven by the station.
const (
	Blue Output = iota
	Yellow
	Red
	Fan
	Light
	outputCount
)

// String returns a lowercase name for logs.
func (o Output) String() string {
	switch o {
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	case Fan:
		return "fan"
	case Light:
		return "light"
	default:
		return fmt.Sprintf("output(%d)", int(o))
	}
}

// Outputs drives digital output lines.
type Outputs interface {
	Set(o Output, on bool) error
}

// ToneOutput drives the square-wave tone pin.
type ToneOutput interface {
	// Emit starts a square wave at frequency Hz, replacing any current one.
	Emit(frequency uint)
	// Silence stops the wave and parks the pin high.
	Silence()
}

// Handlers are called on rising edges of the input lines.
// They run on the watcher goroutine and must not block.
type Handlers struct {
	Presence func()
	Reset    func()
}

// Inputs delivers sensor edges.
type Inputs interface {
	Watch(h Handlers) error
}

// Board is everything the station needs from the pins.
type Board interface {
	Outputs
	ToneOutput
	Inputs
	Close() error
}
