// Package gpio provides GPIO line access with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// SwitchReader reads the momentary switch input.
type SwitchReader interface {
	// Pressed returns true while the switch is held.
	// The raw line is active-low: raw 0 = pressed.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives an output line.
type Writer interface {
	// SetValue drives the line high (true) or low (false).
	SetValue(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device holding the lines.
const DefaultChip = "gpiochip0"

// Pin definitions (BCM numbering)
const (
	DefaultPinOutput = 6 // controlled power line
	DefaultPinSwitch = 5 // momentary switch, pulled up
	DefaultPinRed    = 2 // status LED: output OFF
	DefaultPinYellow = 3 // status LED: initialising
	DefaultPinGreen  = 4 // status LED: output ON
)
