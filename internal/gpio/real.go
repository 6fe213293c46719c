//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSwitch reads the switch from actual hardware using Linux GPIO character device.
type RealSwitch struct {
	pin  int
	line *gpiocdev.Line
}

// NewRealSwitch requests pin on chip as an input with pull-up.
func NewRealSwitch(chip string, pin int) (*RealSwitch, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request switch pin %d: %w", pin, err)
	}
	return &RealSwitch{pin: pin, line: line}, nil
}

// Pressed returns true while the line is pulled low.
func (s *RealSwitch) Pressed() (bool, error) {
	raw, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read switch pin %d: %w", s.pin, err)
	}
	return raw == 0, nil
}

// Close releases the switch line.
func (s *RealSwitch) Close() error {
	if s.line == nil {
		return nil
	}
	if err := s.line.Close(); err != nil {
		return fmt.Errorf("close switch pin %d: %w", s.pin, err)
	}
	return nil
}

// RealLine drives an output line on actual hardware.
type RealLine struct {
	pin  int
	line *gpiocdev.Line
}

// NewRealLine requests pin on chip as an output, initially low.
func NewRealLine(chip string, pin int) (*RealLine, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealLine{pin: pin, line: line}, nil
}

// SetValue drives the line.
func (l *RealLine) SetValue(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", l.pin, err)
	}
	return nil
}

// Close drives the line low and releases it.
// Reconfigures the pin to input with pull-down (matching Pi boot defaults)
// before closing, so attached hardware sees a clean state on reboot.
func (l *RealLine) Close() error {
	if l.line == nil {
		return nil
	}

	var errs []error
	if err := l.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive pin %d low: %w", l.pin, err))
	}
	if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.pin, err))
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", l.pin, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// ReadLevel reports the level of pin on chip without changing its direction.
func ReadLevel(chip string, pin int) (bool, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsIs)
	if err != nil {
		return false, fmt.Errorf("request pin %d: %w", pin, err)
	}
	defer line.Close()

	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v == 1, nil
}
