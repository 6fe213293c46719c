// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/netpowerswitch/internal/logic"
)

// Topic is the MQTT topic for output toggle events.
const Topic = "netpowerswitch/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "netpowerswitch/system"

// ErrQueued is returned by a Publisher that could not reach the broker and
// kept the message for replay after the next connect.
var ErrQueued = errors.New("mqtt: not connected, message queued")

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a toggle event to the broker.
	// Returns error if publishing fails (should not crash the process),
	// or ErrQueued if the message was kept for later.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload represents the MQTT message payload for a toggle.
type Payload struct {
	Power PowerPayload `json:"power"`
}

// PowerPayload contains the toggle details.
type PowerPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
	Source    string `json:"source"`
}

// FormatPayload creates the JSON payload for a toggle event.
// Each payload carries a fresh id so consumers can drop replays.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Power: PowerPayload{
			ID:        uuid.NewString(),
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			State:     string(event.State),
			Source:    string(event.Source),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// willPayload is registered with the broker at connect time and published
// by it if the daemon drops off without a clean SHUTDOWN.
func willPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "MQTT_DISCONNECT"})
	return data
}
