package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Output        string       `json:"output"`
	Session       bool         `json:"session_active"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	ClockSynced   bool         `json:"clock_synced"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"toggle_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of toggle counts.
type CountsJSON struct {
	Switch int `json:"switch"`
	Web    int `json:"web"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Mode    string `json:"mode"`
	IP      string `json:"ip"`
	Gateway string `json:"gateway,omitempty"`
	DNS     string `json:"dns,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	SessionTimeoutMs int64  `json:"session_timeout_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
	NTPServer        string `json:"ntp_server"`
}

func buildInner(snap Snapshot) StatusInner {
	out := string(snap.Output)
	if out == "" {
		out = "UNKNOWN"
	}

	inner := StatusInner{
		Output:        out,
		Session:       snap.SessionActive,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		ClockSynced:   snap.ClockSynced,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Switch: snap.Counts.Switch,
			Web:    snap.Counts.Web,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			SessionTimeoutMs: snap.Config.SessionTimeoutMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			NTPServer:        snap.Config.NTPServer,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Mode:    snap.Network.Mode,
			IP:      snap.Network.IP,
			Gateway: snap.Network.Gateway,
			DNS:     snap.Network.DNS,
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for --print-state.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
