// Package schedule applies scenes on cron schedules.
package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/led"
)

// SceneApplier applies a named scene. Satisfied by *control.Service.
type SceneApplier interface {
	ApplyScene(name string) ([]led.State, error)
}

// Entry describes one scheduled scene.
type Entry struct {
	Spec  string    `json:"spec"`
	Scene string    `json:"scene"`
	Next  time.Time `json:"next"`
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec accepts a five-field cron expression, a descriptor such as
// "@daily" or "@every 10m", or a bare duration like "30m".
func ParseSpec(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, errors.New("empty schedule")
	}
	if sched, err := parser.Parse(spec); err == nil {
		return sched, nil
	}
	d, err := time.ParseDuration(spec)
	if err != nil {
		return nil, fmt.Errorf("not a cron expression or duration: %q", spec)
	}
	if d <= 0 {
		return nil, fmt.Errorf("duration must be positive: %q", spec)
	}
	return cron.Every(d), nil
}

// Scheduler runs scene changes from config.ScheduleEntry values.
type Scheduler struct {
	cron   *cron.Cron
	target SceneApplier
	logger *slog.Logger

	mu      sync.Mutex
	ids     []cron.EntryID
	entries []config.ScheduleEntry
	started bool
}

// New creates a stopped scheduler.
func New(target SceneApplier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		target: target,
		logger: logger,
	}
}

// Replace swaps every scheduled entry for entries. If any spec is
// invalid nothing changes.
func (s *Scheduler) Replace(entries []config.ScheduleEntry) error {
	scheds := make([]cron.Schedule, len(entries))
	for i, e := range entries {
		sched, err := ParseSpec(e.Spec)
		if err != nil {
			return fmt.Errorf("schedule %q for scene %s: %w", e.Spec, e.Scene, err)
		}
		scheds[i] = sched
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.ids {
		s.cron.Remove(id)
	}
	s.ids = s.ids[:0]
	for i, e := range entries {
		s.ids = append(s.ids, s.cron.Schedule(scheds[i], s.job(e)))
	}
	s.entries = append([]config.ScheduleEntry(nil), entries...)
	s.logger.Info("schedule loaded", "entries", len(entries))
	return nil
}

func (s *Scheduler) job(e config.ScheduleEntry) cron.Job {
	return cron.FuncJob(func() {
		if _, err := s.target.ApplyScene(e.Scene); err != nil {
			s.logger.Warn("scheduled scene failed", "scene", e.Scene, "spec", e.Spec, "error", err)
			return
		}
		s.logger.Info("scheduled scene applied", "scene", e.Scene, "spec", e.Spec)
	})
}

// Entries returns the scheduled scenes with their next run time. Next is
// zero until the scheduler is started.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.ids))
	for i, id := range s.ids {
		out = append(out, Entry{
			Spec:  s.entries[i].Spec,
			Scene: s.entries[i].Scene,
			Next:  s.cron.Entry(id).Next,
		})
	}
	return out
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}
