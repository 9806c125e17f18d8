//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/oshokin/cstation/internal/config"
)

// inputDebounce filters contact bounce on the reset button and PIR output.
const inputDebounce = 20 * time.Millisecond

// Chip drives real pins through the GPIO character device.
type Chip struct {
	chip    *gpiocdev.Chip
	outputs [outputCount]*gpiocdev.Line
	tone    *gpiocdev.Line
	inputs  []*gpiocdev.Line
	pins    config.Pins

	// mu protects the tone generator state.
	mu       sync.Mutex
	toneStop chan struct{}
	toneDone chan struct{}
}

// NewChip opens the chip and requests every output line, initially off.
func NewChip(hw config.Hardware) (*Chip, error) {
	chip, err := gpiocdev.NewChip(hw.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	c := &Chip{chip: chip, pins: hw.Pins}

	offsets := [outputCount]int{
		Blue:   hw.Pins.Blue,
		Yellow: hw.Pins.Yellow,
		Red:    hw.Pins.Red,
		Fan:    hw.Pins.Fan,
		Light:  hw.Pins.Light,
	}

	for o, offset := range offsets {
		line, reqErr := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if reqErr != nil {
			_ = c.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", Output(o), offset, reqErr)
		}

		c.outputs[o] = line
	}

	// The tone pin idles high, as the buzzer driver is active-low.
	c.tone, err = chip.RequestLine(hw.Pins.Tone, gpiocdev.AsOutput(1))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("request tone pin %d: %w", hw.Pins.Tone, err)
	}

	return c, nil
}

// Set drives an output line.
func (c *Chip) Set(o Output, on bool) error {
	if o < 0 || o >= outputCount || c.outputs[o] == nil {
		return fmt.Errorf("set %s: line not requested", o)
	}

	value := 0
	if on {
		value = 1
	}

	if err := c.outputs[o].SetValue(value); err != nil {
		return fmt.Errorf("set %s: %w", o, err)
	}

	return nil
}

// Emit toggles the tone pin at frequency Hz on a dedicated goroutine.
func (c *Chip) Emit(frequency uint) {
	c.Silence()

	if frequency == 0 || c.tone == nil {
		return
	}

	halfPeriod := time.Second / time.Duration(2*frequency)
	stop := make(chan struct{})
	done := make(chan struct{})

	c.mu.Lock()
	c.toneStop, c.toneDone = stop, done
	c.mu.Unlock()

	go func(line *gpiocdev.Line) {
		defer close(done)

		ticker := time.NewTicker(halfPeriod)
		defer ticker.Stop()

		level := 0
		for {
			select {
			case <-stop:
				_ = line.SetValue(1)
				return
			case <-ticker.C:
				level ^= 1
				_ = line.SetValue(level)
			}
		}
	}(c.tone)
}

// Silence stops the tone goroutine and parks the pin high.
func (c *Chip) Silence() {
	c.mu.Lock()
	stop, done := c.toneStop, c.toneDone
	c.toneStop, c.toneDone = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}

// Watch requests the presence and reset lines with rising-edge handlers.
func (c *Chip) Watch(h Handlers) error {
	watch := func(offset int, fn func()) error {
		if fn == nil {
			return nil
		}

		line, err := c.chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullDown,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithDebounce(inputDebounce),
			gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { fn() }),
		)
		if err != nil {
			return fmt.Errorf("watch pin %d: %w", offset, err)
		}

		c.inputs = append(c.inputs, line)

		return nil
	}

	if err := watch(c.pins.Presence, h.Presence); err != nil {
		return err
	}

	return watch(c.pins.Reset, h.Reset)
}

// Close turns outputs off and releases every line.
func (c *Chip) Close() error {
	c.Silence()

	var errs []error

	for o, line := range c.outputs {
		if line == nil {
			continue
		}

		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", Output(o), err))
		}

		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", Output(o), err))
		}
	}

	if c.tone != nil {
		if err := c.tone.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tone: %w", err))
		}
	}

	for _, line := range c.inputs {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input: %w", err))
		}
	}

	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	return errors.Join(errs...)
}
