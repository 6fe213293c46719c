package status

import (
	"errors"
	"testing"
)

type fakeLED struct {
	on  bool
	err error
}

func (l *fakeLED) SetValue(on bool) error {
	if l.err != nil {
		return l.err
	}
	l.on = on
	return nil
}

func TestIndicatorShow(t *testing.T) {
	tests := []struct {
		name                string
		initializing, on    bool
		wantR, wantY, wantG bool
	}{
		{"initializing", true, false, false, true, false},
		{"initializing ignores output", true, true, false, true, false},
		{"output on", false, true, false, false, true},
		{"output off", false, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, y, g := &fakeLED{}, &fakeLED{on: true}, &fakeLED{on: true}
			NewIndicator(r, y, g).Show(tt.initializing, tt.on)

			if r.on != tt.wantR || y.on != tt.wantY || g.on != tt.wantG {
				t.Errorf("got red=%v yellow=%v green=%v, want %v %v %v",
					r.on, y.on, g.on, tt.wantR, tt.wantY, tt.wantG)
			}
		})
	}
}

func TestIndicatorNilLEDs(t *testing.T) {
	g := &fakeLED{}
	NewIndicator(nil, nil, g).Show(false, true)
	if !g.on {
		t.Error("expected green on")
	}
}

func TestIndicatorWriteErrorContinues(t *testing.T) {
	r, y, g := &fakeLED{}, &fakeLED{err: errors.New("boom")}, &fakeLED{}
	NewIndicator(r, y, g).Show(false, false)
	if !r.on {
		t.Error("a failing LED must not stop the others")
	}
}
