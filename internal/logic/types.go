// Package logic contains pure decision logic for the LED daemon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Level is the debounced level of the dark-mode button.
type Level string

const (
	LevelPressed  Level = "PRESSED"
	LevelReleased Level = "RELEASED"
)

// EventType represents a button transition.
type EventType string

const (
	EventPressed  EventType = "BUTTON_PRESSED"
	EventReleased EventType = "BUTTON_RELEASED"
)

// Event represents a debounced button transition.
type Event struct {
	Timestamp time.Time
	Type      EventType
}

// ButtonState tracks debounce state for the button.
type ButtonState struct {
	// Current stable (debounced) level
	Stable Level
	// Pending level during debounce
	Pending Level
	// Time when pending level was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input represents a single sample of the button.
type Input struct {
	Pressed bool // already inverted from the active-low line
	Time    time.Time
}

// Counts tracks button transitions since startup.
type Counts struct {
	Presses  int
	Releases int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}
