package logic

import "time"

// Debouncer turns raw button samples into debounced press/release events.
type Debouncer struct {
	debounceDuration time.Duration
	button           ButtonState
	counts           Counts
}

// NewDebouncer creates a button debouncer with the given debounce duration.
func NewDebouncer(debounceDuration time.Duration) *Debouncer {
	return &Debouncer{debounceDuration: debounceDuration}
}

// Process takes a new sample and returns an event if the debounced level
// changed. No events are returned until a baseline is established, so a
// button held down at startup does not count as a press.
func (d *Debouncer) Process(input Input) *Event {
	level := boolToLevel(input.Pressed)
	b := &d.button

	if !b.Baselined {
		if b.Pending != level {
			// First sample, or level changed during baseline: restart
			b.Pending = level
			b.PendingSince = input.Time
		}
		if input.Time.Sub(b.PendingSince) >= d.debounceDuration {
			b.Stable = level
			b.Baselined = true
			b.Pending = ""
		}
		return nil
	}

	if level == b.Stable {
		// Bounce back to stable level, clear any pending
		b.Pending = ""
		return nil
	}

	if b.Pending != level {
		b.Pending = level
		b.PendingSince = input.Time
	}

	if input.Time.Sub(b.PendingSince) < d.debounceDuration {
		return nil
	}

	b.Stable = level
	b.Pending = ""

	e := &Event{Timestamp: input.Time, Type: EventReleased}
	if level == LevelPressed {
		e.Type = EventPressed
		d.counts.Presses++
	} else {
		d.counts.Releases++
	}
	return e
}

func boolToLevel(pressed bool) Level {
	if pressed {
		return LevelPressed
	}
	return LevelReleased
}

// IsBaselined returns whether the debouncer has established a baseline.
func (d *Debouncer) IsBaselined() bool {
	return d.button.Baselined
}

// CurrentLevel returns the stable level, or "" before the baseline.
func (d *Debouncer) CurrentLevel() Level {
	return d.button.Stable
}

// CountsSnapshot returns the transition counts since startup.
func (d *Debouncer) CountsSnapshot() Counts {
	return d.counts
}

// Heartbeat decides when periodic system events are due.
type Heartbeat struct {
	interval  time.Duration
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a heartbeat that first fires interval after startTime.
// An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, startTime time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, startTime: startTime, last: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if disabled or not yet due.
func (h *Heartbeat) Check(now time.Time) *HeartbeatData {
	if h.interval <= 0 {
		return nil
	}
	if now.Sub(h.last) < h.interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
	}
}
