package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/nuc-led/internal/led"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	LEDs          []led.State `json:"leds"`
	DarkMode      bool        `json:"dark_mode"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Driver        DriverJSON  `json:"driver"`
	ButtonPresses int         `json:"button_presses"`
	Config        ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// DriverJSON reports driver activity.
type DriverJSON struct {
	Path        string `json:"path"`
	Writes      int    `json:"writes"`
	Errors      int    `json:"errors"`
	LastError   string `json:"last_error,omitempty"`
	LastErrorAt string `json:"last_error_at,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
	HTTPAddr    string `json:"http_addr"`
	ButtonPin   int    `json:"button_pin"`
	Metrics     bool   `json:"metrics"`
}

func buildInner(snap Snapshot) StatusInner {
	leds := snap.LEDs
	if leds == nil {
		leds = []led.State{}
	}

	inner := StatusInner{
		LEDs:          leds,
		DarkMode:      snap.DarkMode,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Driver: DriverJSON{
			Path:      snap.Config.DriverPath,
			Writes:    snap.Writes,
			Errors:    snap.Errors,
			LastError: snap.LastError,
		},
		ButtonPresses: snap.ButtonPresses,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			TopicPrefix: snap.Config.TopicPrefix,
			HTTPAddr:    snap.Config.HTTPAddr,
			ButtonPin:   snap.Config.ButtonPin,
			Metrics:     snap.Config.Metrics,
		},
	}
	if !snap.LastErrorAt.IsZero() {
		inner.Driver.LastErrorAt = snap.LastErrorAt.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the indented status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
