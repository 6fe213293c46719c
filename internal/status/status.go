// Package status provides a thread-safe status tracker for the netpowerswitch
// daemon and the LED status indicator.
// The tracker is read by MQTT system events and --print-state.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/netpowerswitch/internal/logic"
)

// NetworkInfo describes the link brought up at startup.
type NetworkInfo struct {
	Mode    string // "dhcp" or "static"
	IP      string
	Gateway string
	DNS     string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	DebounceMs       int64
	HeartbeatMs      int64
	SessionTimeoutMs int64
	Broker           string
	HTTPAddr         string
	NTPServer        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Output        logic.State
	SessionActive bool
	Ready         bool
	Counts        logic.ToggleCounts
	StartTime     time.Time
	Now           time.Time
	ClockSynced   bool
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
// now stamps each Snapshot; nil selects time.Now.
func NewTracker(startTime time.Time, cfg Config, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		snap: Snapshot{
			Output:    logic.StateOff,
			StartTime: startTime,
			Config:    cfg,
		},
		now: now,
	}
}

// SetOutput records the current output state.
func (t *Tracker) SetOutput(on bool) {
	t.mu.Lock()
	t.snap.Output = logic.StateOf(on)
	t.mu.Unlock()
}

// RecordToggle records an applied toggle from src and the resulting state.
func (t *Tracker) RecordToggle(src logic.Source, on bool) {
	t.mu.Lock()
	t.snap.Output = logic.StateOf(on)
	t.snap.Counts.Add(src)
	t.mu.Unlock()
}

// SetSessionActive records whether a web session exists.
func (t *Tracker) SetSessionActive(active bool) {
	t.mu.Lock()
	t.snap.SessionActive = active
	t.mu.Unlock()
}

// SetReady marks initialisation as finished (network up, clock synced or given up).
func (t *Tracker) SetReady(ready bool) {
	t.mu.Lock()
	t.snap.Ready = ready
	t.mu.Unlock()
}

// SetClockSynced records whether the last time sync succeeded.
func (t *Tracker) SetClockSynced(synced bool) {
	t.mu.Lock()
	t.snap.ClockSynced = synced
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
