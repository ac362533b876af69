package schedule

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/led"
)

type fakeApplier struct {
	mu     sync.Mutex
	scenes []string
	err    error
}

func (f *fakeApplier) ApplyScene(name string) ([]led.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scenes = append(f.scenes, name)
	return nil, f.err
}

func (f *fakeApplier) applied() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scenes...)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseSpec(t *testing.T) {
	from := time.Date(2026, 3, 1, 21, 30, 0, 0, time.Local)

	tests := []struct {
		spec string
		next time.Time
	}{
		{"0 22 * * *", time.Date(2026, 3, 1, 22, 0, 0, 0, time.Local)},
		{"@daily", time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)},
		{"@every 10m", from.Add(10 * time.Minute)},
		{"45m", from.Add(45 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			sched, err := ParseSpec(tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := sched.Next(from); !got.Equal(tt.next) {
				t.Errorf("Next: got %v, want %v", got, tt.next)
			}
		})
	}
}

func TestParseSpecInvalid(t *testing.T) {
	for _, spec := range []string{"", "sometimes", "61 * * * *", "-5m", "0s"} {
		t.Run(spec, func(t *testing.T) {
			if _, err := ParseSpec(spec); err == nil {
				t.Errorf("expected error for %q", spec)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	a := &fakeApplier{}
	s := New(a, quiet())

	err := s.Replace([]config.ScheduleEntry{
		{Spec: "0 22 * * *", Scene: "dark"},
		{Spec: "@every 1h", Scene: "evening"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Entries(); len(got) != 2 || got[0].Scene != "dark" || got[1].Spec != "@every 1h" {
		t.Errorf("Entries: got %+v", got)
	}

	if err := s.Replace([]config.ScheduleEntry{{Spec: "@hourly", Scene: "day"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := s.Entries()
	if len(got) != 1 || got[0].Scene != "day" {
		t.Errorf("Entries after replace: got %+v", got)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("cron entries: got %d, want 1", n)
	}
}

func TestReplaceInvalidKeepsOld(t *testing.T) {
	s := New(&fakeApplier{}, quiet())
	if err := s.Replace([]config.ScheduleEntry{{Spec: "@daily", Scene: "a"}}); err != nil {
		t.Fatal(err)
	}

	err := s.Replace([]config.ScheduleEntry{
		{Spec: "@hourly", Scene: "b"},
		{Spec: "whenever", Scene: "c"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	got := s.Entries()
	if len(got) != 1 || got[0].Scene != "a" {
		t.Errorf("Entries: got %+v, want original", got)
	}
}

func TestJobAppliesScene(t *testing.T) {
	a := &fakeApplier{}
	s := New(a, quiet())
	if err := s.Replace([]config.ScheduleEntry{{Spec: "@daily", Scene: "night"}}); err != nil {
		t.Fatal(err)
	}

	entries := s.cron.Entries()
	if len(entries) != 1 {
		t.Fatalf("cron entries: got %d, want 1", len(entries))
	}
	entries[0].Job.Run()

	if got := a.applied(); len(got) != 1 || got[0] != "night" {
		t.Errorf("applied: got %v, want [night]", got)
	}
}

func TestJobErrorIsNotFatal(t *testing.T) {
	a := &fakeApplier{err: errors.New("led driver unavailable")}
	s := New(a, quiet())
	if err := s.Replace([]config.ScheduleEntry{{Spec: "@daily", Scene: "night"}}); err != nil {
		t.Fatal(err)
	}
	s.cron.Entries()[0].Job.Run()
	if len(a.applied()) != 1 {
		t.Error("job should still have attempted the scene")
	}
}

func TestStartRuns(t *testing.T) {
	a := &fakeApplier{}
	s := New(a, quiet())
	if err := s.Replace([]config.ScheduleEntry{{Spec: "@every 1s", Scene: "tick"}}); err != nil {
		t.Fatal(err)
	}

	s.Start()
	s.Start()
	if next := s.Entries()[0].Next; next.IsZero() {
		t.Error("Next should be set once started")
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(a.applied()) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if len(a.applied()) == 0 {
		t.Error("scheduled scene never ran")
	}
}
