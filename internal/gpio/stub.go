//go:build !linux

package gpio

import "errors"

// RealSwitch is not available on non-Linux platforms.
type RealSwitch struct{}

// NewRealSwitch returns an error on non-Linux platforms.
func NewRealSwitch(chip string, pin int) (*RealSwitch, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Pressed is not implemented on non-Linux platforms.
func (s *RealSwitch) Pressed() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealSwitch) Close() error {
	return nil
}

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chip string, pin int) (*RealLine, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetValue is not implemented on non-Linux platforms.
func (l *RealLine) SetValue(on bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *RealLine) Close() error {
	return nil
}

// ReadLevel returns an error on non-Linux platforms.
func ReadLevel(chip string, pin int) (bool, error) {
	return false, errors.New("gpio: not supported on this platform (requires Linux)")
}
