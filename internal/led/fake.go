package led

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// FakeDriver is an in-memory driver that behaves like the kernel module.
// Reads render Power and Ring in the driver's text layout; writes are
// validated and applied to the matching state.
type FakeDriver struct {
	mu sync.Mutex

	// Power and Ring hold the simulated hardware state.
	Power State
	Ring  State

	// Text, if set, is returned by ReadText instead of the rendered state.
	Text string

	// ReadError, if set, will be returned by ReadText.
	ReadError error

	// WriteError, if set, will be returned by WriteLine.
	WriteError error

	// OnWrite, if set, is called after every accepted write.
	OnWrite func(line string)

	// Writes contains every line passed to WriteLine, accepted or not.
	Writes []string

	// Reads counts calls to ReadText.
	Reads int
}

// NewFakeDriver creates a FakeDriver with both LEDs on at full brightness.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Power: State{ID: PowerID, Brightness: 100, Style: StyleNone, Colour: "blue"},
		Ring:  State{ID: RingID, Brightness: 100, Style: StyleNone, Colour: "white"},
	}
}

// ReadText renders the simulated state.
func (f *FakeDriver) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads++
	if f.ReadError != nil {
		return "", f.ReadError
	}
	if f.Text != "" {
		return f.Text, nil
	}
	return FormatDriverText(f.Power, f.Ring), nil
}

// WriteLine records line and applies it. Invalid commands are rejected
// the way the kernel module rejects them.
func (f *FakeDriver) WriteLine(line string) error {
	f.mu.Lock()
	f.Writes = append(f.Writes, line)
	if f.WriteError != nil {
		err := f.WriteError
		f.mu.Unlock()
		return err
	}

	fields := strings.Split(strings.TrimSuffix(line, "\n"), ",")
	if len(fields) != 4 {
		f.mu.Unlock()
		return fmt.Errorf("fake driver: invalid command %q", line)
	}
	brightness, err := strconv.Atoi(fields[1])
	if err != nil || brightness < 0 || brightness > 100 {
		f.mu.Unlock()
		return fmt.Errorf("fake driver: invalid brightness %q", fields[1])
	}
	if !ValidStyle(fields[2]) {
		f.mu.Unlock()
		return fmt.Errorf("fake driver: invalid style %q", fields[2])
	}

	var target *State
	var colours []string
	switch fields[0] {
	case PowerID:
		target, colours = &f.Power, powerColours
	case RingID:
		target, colours = &f.Ring, ringColours
	default:
		f.mu.Unlock()
		return fmt.Errorf("fake driver: invalid led %q", fields[0])
	}
	if !contains(colours, fields[3]) {
		f.mu.Unlock()
		return fmt.Errorf("fake driver: invalid colour %q", fields[3])
	}

	target.ID = fields[0]
	target.Brightness = brightness
	target.Style = fields[2]
	target.Colour = fields[3]
	hook := f.OnWrite
	f.mu.Unlock()

	if hook != nil {
		hook(line)
	}
	return nil
}

// WrittenLines returns a copy of Writes.
func (f *FakeDriver) WrittenLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Writes...)
}

// SetReadError sets ReadError under the fake's lock.
func (f *FakeDriver) SetReadError(err error) {
	f.mu.Lock()
	f.ReadError = err
	f.mu.Unlock()
}

// SetStates replaces the simulated hardware state.
func (f *FakeDriver) SetStates(power, ring State) {
	f.mu.Lock()
	f.Power, f.Ring = power, ring
	f.mu.Unlock()
}

// Reset clears recorded writes and injected errors.
func (f *FakeDriver) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = nil
	f.Reads = 0
	f.Text = ""
	f.ReadError = nil
	f.WriteError = nil
	f.OnWrite = nil
}
