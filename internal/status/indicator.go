package status

import "log"

// LED is a single status light.
type LED interface {
	SetValue(on bool) error
}

// Indicator renders daemon state on three LEDs: yellow while
// initialising, then green for output ON or red for output OFF.
// Any LED may be nil.
type Indicator struct {
	red    LED
	yellow LED
	green  LED
}

// NewIndicator creates an Indicator driving the given LEDs.
func NewIndicator(red, yellow, green LED) *Indicator {
	return &Indicator{red: red, yellow: yellow, green: green}
}

// Show lights the LEDs for the given phase and output state.
// Write failures are logged and otherwise ignored.
func (ind *Indicator) Show(initializing, on bool) {
	red, yellow, green := false, false, false
	switch {
	case initializing:
		yellow = true
	case on:
		green = true
	default:
		red = true
	}

	set := func(name string, led LED, v bool) {
		if led == nil {
			return
		}
		if err := led.SetValue(v); err != nil {
			log.Printf("led: set %s: %v", name, err)
		}
	}
	set("yellow", ind.yellow, yellow)
	set("red", ind.red, red)
	set("green", ind.green, green)
}
