package logic

import "time"

// Heartbeat decides when a periodic status event is due.
type Heartbeat struct {
	interval time.Duration
	last     time.Time
}

// NewHeartbeat creates a Heartbeat whose first beat is due interval after start.
func NewHeartbeat(interval time.Duration, start time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, last: start}
}

// Due reports whether a heartbeat should be emitted at now, and if so
// records now as the last beat. Returns false if interval is <= 0 (disabled).
func (h *Heartbeat) Due(now time.Time) bool {
	if h.interval <= 0 {
		return false
	}
	if now.Sub(h.last) < h.interval {
		return false
	}
	h.last = now
	return true
}
