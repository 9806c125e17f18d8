package eeprom

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Size is the number of addressable cells.
const Size = 512

// Erased is the value of a blank cell.
const Erased byte = 0xFF

// Cell addresses used by the station.
const (
	AddrStationName = 0
	AddrHourlyBeep  = 18
	AddrAlarmHour   = 19
	AddrFanState    = 21
	AddrLightState  = 22
)

// StationNameLen is the size of the station name cell, terminator included.
const StationNameLen = AddrHourlyBeep - AddrStationName

// Tri-state cell encoding; anything else reads as auto.
const (
	triOff  byte = 1
	triOn   byte = 2
	triAuto byte = 3
)

// errOutOfRange is returned for writes outside the image.
var errOutOfRange = errors.New("address out of range")

// Store is the in-memory EEPROM image backed by a Repository.
type Store struct {
	repo Repository

	mu    sync.Mutex
	image [Size]byte
}

// Open loads the image from repo. A missing image starts blank; an unreadable
// one also starts blank and the error is returned alongside the usable store
// so the caller can log it.
func Open(ctx context.Context, repo Repository) (*Store, error) {
	s := &Store{repo: repo}
	for i := range s.image {
		s.image[i] = Erased
	}

	if repo == nil {
		return s, nil
	}

	image, err := repo.Load(ctx)
	switch {
	case err == nil:
		copy(s.image[:], image)
	case errors.Is(err, ErrNotFound):
		// Keep blank image.
	default:
		return s, fmt.Errorf("load eeprom: %w", err)
	}

	return s, nil
}

// ReadByte returns the cell at addr, Erased when out of range.
func (s *Store) ReadByte(addr int) byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if addr < 0 || addr >= Size {
		return Erased
	}

	return s.image[addr]
}

// WriteByte stores b at addr and persists the image.
func (s *Store) WriteByte(ctx context.Context, addr int, b byte) error {
	return s.write(ctx, addr, []byte{b})
}

// ReadString reads at most maxLen-1 bytes starting at addr, stopping at a
// zero or erased cell.
func (s *Store) ReadString(addr, maxLen int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 0, max(maxLen-1, 0))
	for i := 0; i < maxLen-1 && addr+i >= 0 && addr+i < Size; i++ {
		c := s.image[addr+i]
		if c == 0 || c == Erased {
			break
		}

		buf = append(buf, c)
	}

	return string(buf)
}

// WriteString stores at most maxLen-1 bytes of str followed by a terminator.
func (s *Store) WriteString(ctx context.Context, addr int, str string, maxLen int) error {
	if maxLen <= 0 {
		return nil
	}

	n := min(len(str), maxLen-1)
	buf := make([]byte, n+1)
	copy(buf, str[:n])

	return s.write(ctx, addr, buf)
}

// ReadTriState decodes an (auto, on) pair. Unknown values read as auto.
func (s *Store) ReadTriState(addr int) (auto, on bool) {
	switch s.ReadByte(addr) {
	case triOff:
		return false, false
	case triOn:
		return false, true
	default:
		return true, false
	}
}

// WriteTriState encodes an (auto, on) pair into one cell.
func (s *Store) WriteTriState(ctx context.Context, addr int, auto, on bool) error {
	value := triOff

	switch {
	case auto:
		value = triAuto
	case on:
		value = triOn
	}

	return s.WriteByte(ctx, addr, value)
}

// Snapshot returns a copy of the image.
func (s *Store) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, Size)
	copy(out, s.image[:])

	return out
}

func (s *Store) write(ctx context.Context, addr int, data []byte) error {
	if addr < 0 || addr+len(data) > Size {
		return fmt.Errorf("write %d bytes at %d: %w", len(data), addr, errOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.image[addr:], data)

	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.image[:]); err != nil {
		return fmt.Errorf("persist eeprom: %w", err)
	}

	return nil
}
