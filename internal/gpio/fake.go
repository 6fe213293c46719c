package gpio

import (
	"errors"
	"sync"
)

// FakeSwitch is a test double that returns scripted switch readings.
type FakeSwitch struct {
	// Samples contains scripted pressed values to return.
	// Each call to Pressed() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Pressed()
	ReadError error
}

// NewFakeSwitch creates a FakeSwitch with the given samples.
func NewFakeSwitch(samples []bool) *FakeSwitch {
	return &FakeSwitch{Samples: samples}
}

// Pressed returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSwitch) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the switch as closed.
func (f *FakeSwitch) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the switch to the beginning of samples.
func (f *FakeSwitch) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeLine is a test double recording every value written to it.
// Safe for concurrent use.
type FakeLine struct {
	mu     sync.Mutex
	on     bool
	writes []bool
	closed bool

	// WriteError, if set, will be returned by SetValue().
	WriteError error
}

// NewFakeLine creates a FakeLine, initially low.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// SetValue records the write and updates the level.
func (f *FakeLine) SetValue(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.on = on
	f.writes = append(f.writes, on)
	return nil
}

// Value returns the last written level.
func (f *FakeLine) Value() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on, nil
}

// Writes returns a copy of all values written so far.
func (f *FakeLine) Writes() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeLine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
