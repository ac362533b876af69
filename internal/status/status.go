// Package status tracks daemon state for the status pages and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/nuc-led/internal/led"
)

// Config is the effective daemon configuration, for display only.
type Config struct {
	DriverPath  string
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	TopicPrefix string
	HTTPAddr    string
	ButtonPin   int
	Metrics     bool
}

// Snapshot is a point-in-time copy of daemon state. Safe to use after the
// lock is released.
type Snapshot struct {
	LEDs          []led.State
	DarkMode      bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Writes        int
	Errors        int
	ButtonPresses int
	LastError     string
	LastErrorAt   time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// LED returns the state recorded for id.
func (s Snapshot) LED(id string) (led.State, bool) {
	for _, st := range s.LEDs {
		if st.ID == id {
			return st, true
		}
	}
	return led.State{}, false
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetLED records the state of one LED, replacing any previous entry
// with the same ID. LEDs keep the order they were first seen in.
func (t *Tracker) SetLED(s led.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.snap.LEDs {
		if t.snap.LEDs[i].ID == s.ID {
			t.snap.LEDs[i] = s
			return
		}
	}
	t.snap.LEDs = append(t.snap.LEDs, s)
}

// SetDarkMode records whether the button has blanked the LEDs.
func (t *Tracker) SetDarkMode(dark bool) {
	t.mu.Lock()
	t.snap.DarkMode = dark
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// RecordWrite counts a successful driver write.
func (t *Tracker) RecordWrite() {
	t.mu.Lock()
	t.snap.Writes++
	t.mu.Unlock()
}

// RecordError counts a driver failure and keeps its message.
func (t *Tracker) RecordError(err error, at time.Time) {
	if err == nil {
		return
	}
	t.mu.Lock()
	t.snap.Errors++
	t.snap.LastError = err.Error()
	t.snap.LastErrorAt = at
	t.mu.Unlock()
}

// SetButtonPresses sets the debounced button press count.
func (t *Tracker) SetButtonPresses(n int) {
	t.mu.Lock()
	t.snap.ButtonPresses = n
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.LEDs = append([]led.State(nil), t.snap.LEDs...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
