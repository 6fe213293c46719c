// Package logic contains the pure state of the power switch: the logical
// value of the controlled output and the shared-password session.
// This package has NO GPIO, MQTT or network dependencies.
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of the controlled output.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf maps a line level to its State.
func StateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// Class returns the CSS class used by the control page for this state.
func (s State) Class() string {
	if s == StateOn {
		return "on"
	}
	return "off"
}

// Source identifies which input path caused a toggle.
type Source string

const (
	SourceSwitch Source = "switch"
	SourceWeb    Source = "web"
)

// Event represents an applied toggle to be published.
type Event struct {
	Timestamp time.Time
	State     State
	Source    Source
}

// ToggleCounts tracks the number of toggles per source since startup.
type ToggleCounts struct {
	Switch int
	Web    int
}

// Add records one toggle from src.
func (c *ToggleCounts) Add(src Source) {
	switch src {
	case SourceSwitch:
		c.Switch++
	case SourceWeb:
		c.Web++
	}
}
