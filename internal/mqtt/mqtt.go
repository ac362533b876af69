// Package mqtt publishes LED state and system events, and turns command
// messages into LED updates.
package mqtt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/nuc-led/internal/led"
)

// DefaultPrefix is the topic prefix when none is configured.
const DefaultPrefix = "nuc/led"

// ErrInvalidCommand means a command message could not be understood.
var ErrInvalidCommand = errors.New("invalid command")

// Topics builds topic names under one prefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultPrefix
	}
	return p
}

// State is the retained state topic for one LED.
func (t Topics) State(id string) string {
	return t.prefix() + "/" + id + "/state"
}

// Set is the command topic for one LED.
func (t Topics) Set(id string) string {
	return t.prefix() + "/" + id + "/set"
}

// SetFilter matches the command topic of every LED.
func (t Topics) SetFilter() string {
	return t.prefix() + "/+/set"
}

// System is the topic for lifecycle events.
func (t Topics) System() string {
	return t.prefix() + "/system"
}

// Publisher publishes LED state and system events.
type Publisher interface {
	// PublishState sends the retained state of one LED.
	// Returns error if publishing fails (should not crash the process).
	PublishState(s led.State) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// MessageHandler receives a raw command message.
type MessageHandler func(topic string, payload []byte)

// Subscriber delivers messages published on the command topics.
type Subscriber interface {
	OnCommand(handler MessageHandler)
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "OFFLINE"
	Reason     string // e.g., "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// StatePayload is the JSON body of a state message.
type StatePayload struct {
	LED StateInner `json:"led"`
}

// StateInner contains the LED state details.
type StateInner struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Brightness int    `json:"brightness"`
	Style      string `json:"style"`
	Colour     string `json:"colour"`
	Off        bool   `json:"off"`
}

// FormatStatePayload creates the JSON payload for one LED's state.
func FormatStatePayload(s led.State, ts time.Time) ([]byte, error) {
	return json.Marshal(StatePayload{
		LED: StateInner{
			ID:         s.ID,
			Timestamp:  ts.UTC().Format(time.RFC3339),
			Brightness: s.Brightness,
			Style:      s.Style,
			Colour:     s.Colour,
			Off:        s.IsOff(),
		},
	})
}

// SystemPayload is used for simple events (OFFLINE) that don't carry a
// full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// Command is a parsed command message.
type Command struct {
	LED    string
	Off    bool
	Update led.Update
}

// ParseCommand decodes a message on a Set topic. The payload is either
// the literal "off" or a JSON object with any of brightness, style and
// colour. Values are checked later by the LED controller.
func (t Topics) ParseCommand(topic string, payload []byte) (Command, error) {
	rest, ok := strings.CutPrefix(topic, t.prefix()+"/")
	if !ok {
		return Command{}, fmt.Errorf("%w: topic %q outside prefix", ErrInvalidCommand, topic)
	}
	id, ok := strings.CutSuffix(rest, "/set")
	if !ok || strings.Contains(id, "/") {
		return Command{}, fmt.Errorf("%w: topic %q is not a set topic", ErrInvalidCommand, topic)
	}
	if _, known := led.VariantByID(id); !known {
		return Command{}, fmt.Errorf("%w: unknown led %q", ErrInvalidCommand, id)
	}

	body := bytes.TrimSpace(payload)
	if strings.EqualFold(string(body), "off") {
		return Command{LED: id, Off: true}, nil
	}

	var u led.Update
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		return Command{}, fmt.Errorf("%w: %s payload: %w", ErrInvalidCommand, id, err)
	}
	if u.Empty() {
		return Command{}, fmt.Errorf("%w: %s payload sets nothing", ErrInvalidCommand, id)
	}
	return Command{LED: id, Update: u}, nil
}
