package gpio

import (
	"errors"
	"testing"
	"time"
)

// timelineSwitch is pressed while the simulated clock is inside
// [pressAt, releaseAt). sleep advances the simulated clock.
type timelineSwitch struct {
	now       time.Duration
	pressAt   time.Duration
	releaseAt time.Duration
	reads     int
}

func (s *timelineSwitch) Pressed() (bool, error) {
	s.reads++
	return s.now >= s.pressAt && s.now < s.releaseAt, nil
}

func (s *timelineSwitch) Close() error { return nil }

func (s *timelineSwitch) sleep(d time.Duration) { s.now += d }

func newTimelineDebouncer(sw *timelineSwitch, settle time.Duration) *Debouncer {
	d := NewDebouncer(sw, settle)
	d.sleep = sw.sleep
	return d
}

// pollFor polls every interval until the simulated clock reaches end,
// returning the number of toggle events.
func pollFor(d *Debouncer, sw *timelineSwitch, interval, end time.Duration) int {
	events := 0
	for sw.now < end {
		if d.Poll() {
			events++
		}
		sw.now += interval
	}
	return events
}

func TestNewDebouncerDefaultSettle(t *testing.T) {
	d := NewDebouncer(NewFakeSwitch([]bool{false}), 0)
	if d.settle != DefaultSettle {
		t.Errorf("settle: got %v, want %v", d.settle, DefaultSettle)
	}
	if DefaultSettle != 100*time.Millisecond {
		t.Errorf("DefaultSettle: got %v, want 100ms", DefaultSettle)
	}
}

func TestSustainedPressFiresOnce(t *testing.T) {
	sw := &timelineSwitch{pressAt: 0, releaseAt: 500 * time.Millisecond}
	d := newTimelineDebouncer(sw, 100*time.Millisecond)

	if got := pollFor(d, sw, 10*time.Millisecond, 500*time.Millisecond); got != 1 {
		t.Errorf("expected exactly 1 event for a sustained press, got %d", got)
	}
}

func TestShortPressFiresNothing(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{"10ms", 10 * time.Millisecond},
		{"50ms", 50 * time.Millisecond},
		{"99ms", 99 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := &timelineSwitch{pressAt: 20 * time.Millisecond, releaseAt: 20*time.Millisecond + tt.duration}
			d := newTimelineDebouncer(sw, 100*time.Millisecond)

			if got := pollFor(d, sw, 10*time.Millisecond, 500*time.Millisecond); got != 0 {
				t.Errorf("expected 0 events for a %v press, got %d", tt.duration, got)
			}
		})
	}
}

func TestReleaseAndPressAgainFiresTwice(t *testing.T) {
	f := NewFakeSwitch([]bool{
		true, true, // press confirmed
		true, true, // held
		false,      // released
		true, true, // second press confirmed
		true,
	})
	d := NewDebouncer(f, 100*time.Millisecond)
	d.sleep = func(time.Duration) {}

	events := 0
	for i := 0; i < 6; i++ {
		if d.Poll() {
			events++
		}
	}
	if events != 2 {
		t.Errorf("expected 2 events, got %d", events)
	}
}

func TestBounceDuringSettleFiresNothing(t *testing.T) {
	// Asserted on first read, released after the settle delay.
	f := NewFakeSwitch([]bool{true, false, false})
	d := NewDebouncer(f, 100*time.Millisecond)

	slept := time.Duration(0)
	d.sleep = func(dur time.Duration) { slept += dur }

	if d.Poll() {
		t.Error("bounce should not fire")
	}
	if slept != 100*time.Millisecond {
		t.Errorf("expected one settle sleep of 100ms, got %v", slept)
	}
	if d.Poll() {
		t.Error("released switch should not fire")
	}
}

func TestIdleSwitchNeverSleeps(t *testing.T) {
	f := NewFakeSwitch([]bool{false})
	d := NewDebouncer(f, 100*time.Millisecond)
	d.sleep = func(time.Duration) { t.Fatal("idle poll must not block") }

	for i := 0; i < 10; i++ {
		if d.Poll() {
			t.Fatal("idle switch fired")
		}
	}
}

func TestHeldSwitchDoesNotSleepAfterFiring(t *testing.T) {
	sw := &timelineSwitch{pressAt: 0, releaseAt: time.Hour}
	d := newTimelineDebouncer(sw, 100*time.Millisecond)

	if !d.Poll() {
		t.Fatal("expected first poll to fire")
	}
	before := sw.now
	for i := 0; i < 5; i++ {
		if d.Poll() {
			t.Fatal("held switch fired again")
		}
	}
	if sw.now != before {
		t.Errorf("held switch should not block, clock advanced by %v", sw.now-before)
	}
}

func TestReadErrorFiresNothing(t *testing.T) {
	f := NewFakeSwitch([]bool{true})
	f.ReadError = errors.New("gpio fault")
	d := NewDebouncer(f, 100*time.Millisecond)
	d.sleep = func(time.Duration) {}

	if d.Poll() {
		t.Error("read error should not fire")
	}
}
