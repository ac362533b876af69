package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetLoggerTagsModule(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "info", Format: "text"})

	GetLogger("mqtt").Info("connected", "broker", "tcp://localhost:1883")

	out := buf.String()
	if !strings.Contains(out, "module=mqtt") {
		t.Errorf("missing module attribute: %q", out)
	}
	if !strings.Contains(out, "msg=connected") {
		t.Errorf("missing message: %q", out)
	}
}

func TestInitializeLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "warn"})

	l := GetLogger("web")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn not logged: %q", out)
	}
}

func TestInitializeJSONRecreatesExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "info", Format: "text"})
	GetLogger("control")

	Initialize(Config{Level: "debug", Format: "json"})
	GetLogger("control").Debug("applied", "led", "ring")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["module"] != "control" || rec["led"] != "ring" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestHeldLoggerFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "info", Format: "text"})
	held := GetLogger("schedule")

	held.Debug("before")
	Initialize(Config{Level: "debug", Format: "text"})
	held.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("debug logged at info level: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("held logger missed the level change: %q", out)
	}
}

func TestSetOutputDisablesJournal(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "info", Format: "text"})

	if _, ok := GetLogger("journal-check").Handler().(*MultiHandler); ok {
		t.Error("journal fan-out should be off after SetOutput")
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	l := slog.New(h)

	l.Info("one")
	l.Error("two")

	if !strings.Contains(a.String(), "one") || !strings.Contains(a.String(), "two") {
		t.Errorf("first handler: %q", a.String())
	}
	if strings.Contains(b.String(), "one") || !strings.Contains(b.String(), "two") {
		t.Errorf("second handler: %q", b.String())
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("journal down")
}

func TestMultiHandlerKeepsGoingOnError(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(
		failingHandler{slog.NewTextHandler(io.Discard, nil)},
		slog.NewTextHandler(&out, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "applied", 0))
	if err == nil || !strings.Contains(err.Error(), "journal down") {
		t.Errorf("expected joined error, got %v", err)
	}
	if !strings.Contains(out.String(), "applied") {
		t.Errorf("second handler skipped: %q", out.String())
	}
}

func TestJournalFields(t *testing.T) {
	fields := map[string]string{}
	addField(fields, slog.String("led", "ring"), nil)
	addField(fields, slog.Int("brightness", 40), []string{"state"})
	addField(fields, slog.Group("mqtt", slog.Bool("connected", true)), nil)

	if fields["LED"] != "ring" {
		t.Errorf("LED: got %q", fields["LED"])
	}
	if fields["STATE_BRIGHTNESS"] != "40" {
		t.Errorf("STATE_BRIGHTNESS: got %q", fields["STATE_BRIGHTNESS"])
	}
	if fields["MQTT_CONNECTED"] != "true" {
		t.Errorf("MQTT_CONNECTED: got %q", fields["MQTT_CONNECTED"])
	}
}
