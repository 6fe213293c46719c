package gpio

import (
	"log"
	"time"
)

// DefaultSettle is how long a press must hold before it counts.
const DefaultSettle = 100 * time.Millisecond

// Debouncer turns a bouncing momentary switch into at most one toggle
// per physical press. It is edge-triggered: after firing, it stays
// disarmed until the switch has been observed released.
type Debouncer struct {
	sw     SwitchReader
	settle time.Duration
	sleep  func(time.Duration)
	armed  bool
}

// NewDebouncer creates a Debouncer reading sw.
// A non-positive settle selects DefaultSettle.
func NewDebouncer(sw SwitchReader, settle time.Duration) *Debouncer {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Debouncer{
		sw:     sw,
		settle: settle,
		sleep:  time.Sleep,
		armed:  true,
	}
}

// Poll samples the switch once and reports whether a validated press
// should toggle the output this cycle. Blocks for at most the settle
// interval, and only when a fresh press is seen.
func (d *Debouncer) Poll() bool {
	pressed, err := d.sw.Pressed()
	if err != nil {
		log.Printf("gpio read error: %v", err)
		return false
	}

	if !pressed {
		d.armed = true
		return false
	}
	if !d.armed {
		// Still held from a press that already fired.
		return false
	}

	d.sleep(d.settle)

	pressed, err = d.sw.Pressed()
	if err != nil {
		log.Printf("gpio read error: %v", err)
		return false
	}
	if !pressed {
		// Bounce or a press shorter than the settle window.
		return false
	}

	d.armed = false
	return true
}
