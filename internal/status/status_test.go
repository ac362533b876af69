package status

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/nuc-led/internal/led"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 5000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080", ButtonPin: -1}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 5000 {
		t.Errorf("Config.PollMs: got %d, want 5000", snap.Config.PollMs)
	}
	if snap.Config.ButtonPin != -1 {
		t.Errorf("Config.ButtonPin: got %d, want -1", snap.Config.ButtonPin)
	}
	if len(snap.LEDs) != 0 {
		t.Errorf("expected no LEDs initially, got %v", snap.LEDs)
	}
	if snap.MQTTConnected || snap.DarkMode {
		t.Error("expected MQTTConnected=false and DarkMode=false initially")
	}
}

func TestSetLED(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetLED(led.State{ID: "ring", Brightness: 50, Style: "none", Colour: "cyan"})
	tr.SetLED(led.State{ID: "power", Brightness: 100, Style: "none", Colour: "blue"})
	tr.SetLED(led.State{ID: "ring", Brightness: 10, Style: "fade_fast", Colour: "red"})

	snap := tr.Snapshot()
	if len(snap.LEDs) != 2 {
		t.Fatalf("LEDs: got %d, want 2", len(snap.LEDs))
	}
	if snap.LEDs[0].ID != "ring" || snap.LEDs[1].ID != "power" {
		t.Errorf("order: got %s, %s", snap.LEDs[0].ID, snap.LEDs[1].ID)
	}
	ring, ok := snap.LED("ring")
	if !ok {
		t.Fatal("ring not found")
	}
	if ring.Brightness != 10 || ring.Colour != "red" {
		t.Errorf("ring: got %+v", ring)
	}
	if _, ok := snap.LED("disk"); ok {
		t.Error("disk: expected not found")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestRecordWriteAndError(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tr.RecordWrite()
	tr.RecordWrite()
	tr.RecordError(nil, at)
	tr.RecordError(errors.New("led driver unavailable"), at)

	snap := tr.Snapshot()
	if snap.Writes != 2 {
		t.Errorf("Writes: got %d, want 2", snap.Writes)
	}
	if snap.Errors != 1 {
		t.Errorf("Errors: got %d, want 1", snap.Errors)
	}
	if snap.LastError != "led driver unavailable" {
		t.Errorf("LastError: got %q", snap.LastError)
	}
	if !snap.LastErrorAt.Equal(at) {
		t.Errorf("LastErrorAt: got %v, want %v", snap.LastErrorAt, at)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetLED(led.State{ID: "ring", Brightness: 50})

	snap1 := tr.Snapshot()
	tr.SetLED(led.State{ID: "ring", Brightness: 0})

	if snap1.LEDs[0].Brightness != 50 {
		t.Error("snapshot should be a copy; LEDs was modified")
	}
}

func testSnapshot() Snapshot {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		LEDs: []led.State{
			{ID: "ring", Brightness: 50, Style: "blink_fast", Colour: "cyan"},
			{ID: "power", Brightness: 100, Style: "none", Colour: "blue"},
		},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Writes:        4,
		Config:        Config{DriverPath: "/proc/acpi/nuc_led", PollMs: 5000, Broker: "tcp://localhost:1883", TopicPrefix: "nuc/led"},
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(testSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(parsed.Status.LEDs) != 2 {
		t.Fatalf("LEDs: got %d, want 2", len(parsed.Status.LEDs))
	}
	if parsed.Status.LEDs[0].ID != "ring" || parsed.Status.LEDs[0].Style != "blink_fast" {
		t.Errorf("LEDs[0]: got %+v", parsed.Status.LEDs[0])
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Driver.Path != "/proc/acpi/nuc_led" || parsed.Status.Driver.Writes != 4 {
		t.Errorf("Driver: got %+v", parsed.Status.Driver)
	}
	if parsed.Status.Event != "" || parsed.Status.Reason != "" {
		t.Errorf("expected no event/reason for web format, got %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatJSONEmptyLEDs(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	leds, ok := raw["status"]["leds"].([]any)
	if !ok {
		t.Fatalf("leds: got %T, want array", raw["status"]["leds"])
	}
	if len(leds) != 0 {
		t.Errorf("leds: got %v, want empty", leds)
	}
	driver := raw["status"]["driver"].(map[string]any)
	if _, exists := driver["last_error"]; exists {
		t.Error("last_error should be omitted when empty")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	snap := testSnapshot()
	snap.LastError = "write ring: led driver unavailable"
	snap.LastErrorAt = snap.Now

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("got event=%q reason=%q", parsed.Status.Event, parsed.Status.Reason)
	}
	if parsed.Status.Driver.LastErrorAt != "2026-01-01T00:15:00Z" {
		t.Errorf("LastErrorAt: got %q", parsed.Status.Driver.LastErrorAt)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.SetLED(led.State{ID: "ring", Brightness: i % 101})
			tr.SetMQTTConnected(i%2 == 0)
			tr.RecordWrite()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
			_, _ = snap.LED("ring")
		}
	}()

	wg.Wait()
}
