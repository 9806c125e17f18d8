package automation

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a relay command.
type Mode int

// Relay commands.
const (
	ModeAuto Mode = iota
	ModeOff
	ModeOn
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown relay mode")

// ParseMode accepts on, off and auto in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ModeAuto, nil
	case "off":
		return ModeOff, nil
	case "on":
		return ModeOn, nil
	default:
		return ModeAuto, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeOff:
		return "off"
	case ModeOn:
		return "on"
	default:
		return "unknown"
	}
}
