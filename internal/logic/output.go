package logic

import (
	"log"
	"sync"
)

// Line is the physical line driven by an Output.
type Line interface {
	SetValue(on bool) error
}

// Output holds the logical ON/OFF state of the controlled line.
// The line level is written synchronously with every Toggle.
type Output struct {
	mu       sync.Mutex
	on       bool
	line     Line
	onChange func(on bool)
}

// NewOutput creates an Output in the OFF state driving line.
// A nil line is allowed and makes the Output purely logical.
func NewOutput(line Line) *Output {
	return &Output{line: line}
}

// OnChange registers fn to be called after every state change,
// outside the Output's lock.
func (o *Output) OnChange(fn func(on bool)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Read returns the current logical state.
func (o *Output) Read() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// Toggle flips the output and returns the new value.
// A failed line write is logged; the logical state still flips.
func (o *Output) Toggle() bool {
	o.mu.Lock()
	o.on = !o.on
	on := o.on
	if o.line != nil {
		if err := o.line.SetValue(on); err != nil {
			log.Printf("output line write error: %v", err)
		}
	}
	fn := o.onChange
	o.mu.Unlock()

	if fn != nil {
		fn(on)
	}
	return on
}
