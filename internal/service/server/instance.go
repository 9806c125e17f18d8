package server

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another station process is alive.
var ErrAlreadyRunning = errors.New("another station instance is running")

// processLister returns the running processes; tests replace it.
//
//nolint:gochecknoglobals // Seam for tests.
var processLister = ps.Processes

// ensureSingleInstance fails when a process with the same executable name
// other than this one is running.
func ensureSingleInstance(name string) error {
	processList, err := processLister()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !sameExecutable(process.Executable(), name) {
			continue
		}

		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
	}

	return nil
}

// sameExecutable compares names ignoring case and an .exe suffix.
func sameExecutable(executable, name string) bool {
	executable = strings.TrimSuffix(strings.ToLower(executable), ".exe")

	return executable == strings.ToLower(name)
}
