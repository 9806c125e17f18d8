package mqtt

import (
	"sync"

	"github.com/oshokin/cstation/internal/domain/station"
)

// FakePublisher records published snapshots for tests.
type FakePublisher struct {
	mu sync.Mutex

	snapshots []station.Snapshot
	payloads  [][]byte
	closed    bool

	// PublishError, if set, is returned by PublishStatus.
	PublishError error
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return new(FakePublisher)
}

// PublishStatus records the snapshot and its payload.
func (f *FakePublisher) PublishStatus(s station.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatStatus(s)
	if err != nil {
		return err
	}

	f.snapshots = append(f.snapshots, s)
	f.payloads = append(f.payloads, payload)

	return nil
}

// Close marks the publisher closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

// Snapshots returns a copy of the recorded snapshots.
func (f *FakePublisher) Snapshots() []station.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]station.Snapshot(nil), f.snapshots...)
}

// Payloads returns a copy of the recorded payloads.
func (f *FakePublisher) Payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([][]byte(nil), f.payloads...)
}

// Closed reports whether Close was called.
func (f *FakePublisher) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}
