//go:build !linux

package gpio

import (
	"errors"

	"github.com/oshokin/cstation/internal/config"
)

// errUnsupported is returned on platforms without the GPIO character device.
var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// NewChip returns an error on non-Linux platforms.
func NewChip(config.Hardware) (*Chip, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (*Chip) Set(Output, bool) error { return errUnsupported }

// Emit is not implemented on non-Linux platforms.
func (*Chip) Emit(uint) {}

// Silence is not implemented on non-Linux platforms.
func (*Chip) Silence() {}

// Watch is not implemented on non-Linux platforms.
func (*Chip) Watch(Handlers) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (*Chip) Close() error { return nil }
