package station

import "errors"

var (
	// ErrStopped is returned for commands sent after the main loop exited.
	ErrStopped = errors.New("station is stopped")
	// ErrInvalidLux is returned for negative or non-finite lux reports.
	ErrInvalidLux = errors.New("invalid lux value")
)
