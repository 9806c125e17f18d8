package tone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	errEmptyCommand  = errors.New("empty command")
	errBadFrequency  = errors.New("invalid frequency")
	errBadPeriod     = errors.New("invalid period")
	errUnknownMelody = errors.New("unknown melody index")
	errTooManyFields = errors.New("too many fields")
	errMissingMelody = errors.New("missing melody")
)

// ErrInvalidCommand wraps every command parsing failure.
var ErrInvalidCommand = errors.New("invalid tone command")

// RunTone executes a "[L][,]frequency[,period_ms]" command. The L prefix
// links the tone phase to the LED. A zero frequency stops the sequencer.
func (s *Sequencer) RunTone(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, errEmptyCommand)
	}

	linked := false
	if command[0] == 'L' || command[0] == 'l' {
		linked = true
		command = strings.TrimPrefix(command[1:], ",")
	}

	fields := strings.Split(command, ",")
	if len(fields) > 2 {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, errTooManyFields)
	}

	frequency, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %w %q", ErrInvalidCommand, errBadFrequency, fields[0])
	}

	var period time.Duration

	if len(fields) == 2 {
		ms, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %w %q", ErrInvalidCommand, errBadPeriod, fields[1])
		}

		period = time.Duration(ms) * time.Millisecond
	}

	s.Stop()

	if frequency == 0 {
		return nil
	}

	s.LinkLED(linked)
	s.StartTone(uint(frequency), period)

	return nil
}

// RunMelody executes a "[B][I]index_or_script" command. B links the LED,
// I selects a built-in melody by index instead of an inline script.
func (s *Sequencer) RunMelody(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, errEmptyCommand)
	}

	linked, indexed := false, false

flags:
	for len(command) > 0 {
		switch command[0] {
		case 'B':
			linked = true
		case 'I':
			indexed = true
		default:
			break flags
		}

		command = command[1:]
	}

	script := command

	if indexed {
		index, err := strconv.Atoi(strings.TrimSpace(command))
		if err != nil {
			return fmt.Errorf("%w: %w %q", ErrInvalidCommand, errUnknownMelody, command)
		}

		var ok bool
		if script, ok = Melody(index); !ok {
			return fmt.Errorf("%w: %w %d", ErrInvalidCommand, errUnknownMelody, index)
		}
	}

	if script == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, errMissingMelody)
	}

	s.Stop()
	s.LinkLED(linked)
	s.StartMelody(script)

	return nil
}
