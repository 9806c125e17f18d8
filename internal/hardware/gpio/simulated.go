package gpio

import "sync"

// Simulated is an in-memory Board.
type Simulated struct {
	mu        sync.Mutex
	outputs   [outputCount]bool
	frequency uint
	emits     int
	handlers  Handlers
	closed    bool
}

// NewSimulated creates a board with all outputs off.
func NewSimulated() *Simulated {
	return new(Simulated)
}

// Set records the output state.
func (s *Simulated) Set(o Output, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o >= 0 && o < outputCount {
		s.outputs[o] = on
	}

	return nil
}

// Emit records the tone frequency.
func (s *Simulated) Emit(frequency uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frequency = frequency
	s.emits++
}

// Silence clears the tone frequency.
func (s *Simulated) Silence() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frequency = 0
}

// Watch stores the handlers for TriggerPresence and PressReset.
func (s *Simulated) Watch(h Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = h

	return nil
}

// Close marks the board closed.
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

// Output returns the recorded state of o.
func (s *Simulated) Output(o Output) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outputs[o]
}

// Frequency returns the frequency currently emitted, 0 when silent.
func (s *Simulated) Frequency() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.frequency
}

// Emits returns how many times Emit was called.
func (s *Simulated) Emits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.emits
}

// Closed reports whether Close was called.
func (s *Simulated) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// TriggerPresence fires the presence handler as a sensor edge would.
func (s *Simulated) TriggerPresence() {
	s.mu.Lock()
	fn := s.handlers.Presence
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// PressReset fires the reset button handler.
func (s *Simulated) PressReset() {
	s.mu.Lock()
	fn := s.handlers.Reset
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
