// Package control serialises access to the LEDs for every outer surface:
// HTTP, MQTT, the button, the scheduler and the poll loop.
package control

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/led"
	"github.com/sweeney/nuc-led/internal/logging"
)

var (
	// ErrUnknownLED means the LED id is neither "ring" nor "power".
	ErrUnknownLED = errors.New("unknown led")

	// ErrUnknownScene means no scene with that name is configured.
	ErrUnknownScene = errors.New("unknown scene")
)

// Capabilities lists what an LED accepts.
type Capabilities struct {
	ID      string   `json:"led"`
	Colours []string `json:"colours"`
	Styles  []string `json:"styles"`
}

// Hooks receive notifications after the service lock is released.
type Hooks struct {
	// Change is called with the new state whenever a write succeeds or a
	// read finds the LED changed.
	Change func(led.State)

	// Write is called after every successful driver write.
	Write func(id string)

	// Error is called for driver failures. op is "read" or "write".
	// Validation errors are not reported.
	Error func(id, op string, err error)
}

// Option configures a Service.
type Option func(*Service)

// WithScenes sets the initial scene table.
func WithScenes(scenes map[string]config.Scene) Option {
	return func(s *Service) {
		s.scenes = scenes
	}
}

// WithStartupScene names the scene restored by ToggleDark when nothing
// was remembered.
func WithStartupScene(name string) Option {
	return func(s *Service) {
		s.startup = name
	}
}

// WithLogger overrides the control module logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service owns one controller per LED. All methods are safe for concurrent use.
type Service struct {
	mu     sync.Mutex
	leds   map[string]*led.Controller
	order  []string
	scenes map[string]config.Scene

	startup string
	dark    bool
	saved   []led.State

	hooks  []Hooks
	logger *slog.Logger
}

// New creates a service for the ring and power controllers. Either may be
// nil if that LED is not present.
func New(ring, power *led.Controller, opts ...Option) *Service {
	s := &Service{
		leds:   make(map[string]*led.Controller),
		scenes: make(map[string]config.Scene),
	}
	for _, c := range []*led.Controller{ring, power} {
		if c == nil {
			continue
		}
		s.leds[c.ID()] = c
		s.order = append(s.order, c.ID())
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetLogger("control")
	}
	return s
}

// AddHooks registers notification callbacks. Nil fields are skipped.
func (s *Service) AddHooks(h Hooks) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// OnChange registers a state change callback.
func (s *Service) OnChange(fn func(led.State)) {
	s.AddHooks(Hooks{Change: fn})
}

// IDs returns the LED ids in ring, power order.
func (s *Service) IDs() []string {
	return append([]string(nil), s.order...)
}

// pending collects notifications made under the lock.
type pending struct {
	changes []led.State
	writes  []string
	errs    []failure
}

type failure struct {
	id, op string
	err    error
}

// unlock releases the lock and then delivers n.
func (s *Service) unlock(n *pending) {
	hooks := append([]Hooks(nil), s.hooks...)
	s.mu.Unlock()

	for _, f := range n.errs {
		for _, h := range hooks {
			if h.Error != nil {
				h.Error(f.id, f.op, f.err)
			}
		}
	}
	for _, id := range n.writes {
		for _, h := range hooks {
			if h.Write != nil {
				h.Write(id)
			}
		}
	}
	for _, st := range n.changes {
		for _, h := range hooks {
			if h.Change != nil {
				h.Change(st)
			}
		}
	}
}

func (s *Service) controller(id string) (*led.Controller, error) {
	c, ok := s.leds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLED, id)
	}
	return c, nil
}

// read refreshes one LED and records a change. Caller holds the lock.
func (s *Service) read(c *led.Controller, n *pending) (led.State, error) {
	before := c.Mirror()
	st, err := c.State()
	if err != nil {
		n.errs = append(n.errs, failure{c.ID(), "read", err})
		return st, err
	}
	if st != before {
		n.changes = append(n.changes, st)
	}
	return st, nil
}

// apply validates and writes u. Caller holds the lock.
func (s *Service) apply(c *led.Controller, u led.Update, n *pending) (led.State, error) {
	if err := c.Apply(u); err != nil {
		if !isValidation(err) {
			n.errs = append(n.errs, failure{c.ID(), "write", err})
			s.logger.Warn("led write failed", "led", c.ID(), "error", err)
		}
		return c.Mirror(), err
	}
	st := c.Mirror()
	n.writes = append(n.writes, c.ID())
	n.changes = append(n.changes, st)
	s.logger.Info("led updated", "led", st.ID, "brightness", st.Brightness, "style", st.Style, "colour", st.Colour)
	return st, nil
}

func isValidation(err error) bool {
	return errors.Is(err, led.ErrInvalidColour) || errors.Is(err, led.ErrInvalidStyle)
}

// Get reads the current state of one LED from the driver.
func (s *Service) Get(id string) (led.State, error) {
	s.mu.Lock()
	var n pending
	defer s.unlock(&n)

	c, err := s.controller(id)
	if err != nil {
		return led.State{}, err
	}
	return s.read(c, &n)
}

// Apply validates u and writes it to one LED. Brightness is clamped to [0,100].
func (s *Service) Apply(id string, u led.Update) (led.State, error) {
	s.mu.Lock()
	var n pending
	defer s.unlock(&n)

	c, err := s.controller(id)
	if err != nil {
		return led.State{}, err
	}
	if u.Empty() {
		return s.read(c, &n)
	}
	st, err := s.apply(c, u, &n)
	if err == nil && !st.IsOff() {
		s.dark = false
	}
	return st, err
}

// TurnOff darkens one LED.
func (s *Service) TurnOff(id string) (led.State, error) {
	b, style, colour := 0, led.StyleNone, led.ColourOff
	return s.Apply(id, led.Update{Brightness: &b, Style: &style, Colour: &colour})
}

// Refresh re-reads every LED. Change hooks fire only for LEDs whose state
// differs from the last read. Errors for each LED are joined.
func (s *Service) Refresh() ([]led.State, error) {
	s.mu.Lock()
	var n pending
	defer s.unlock(&n)

	states := make([]led.State, 0, len(s.order))
	var errs []error
	for _, id := range s.order {
		st, err := s.read(s.leds[id], &n)
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", id, err))
		}
		states = append(states, st)
	}
	return states, errors.Join(errs...)
}

// Snapshot returns the last known state of every LED without driver I/O.
func (s *Service) Snapshot() []led.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]led.State, 0, len(s.order))
	for _, id := range s.order {
		states = append(states, s.leds[id].Mirror())
	}
	return states
}

// Capabilities returns the colours and styles one LED accepts.
func (s *Service) Capabilities(id string) (Capabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.controller(id)
	if err != nil {
		return Capabilities{}, err
	}
	return Capabilities{ID: id, Colours: c.ValidColours(), Styles: c.Styles()}, nil
}

// DarkMode reports whether ToggleDark last blanked the LEDs.
func (s *Service) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// ToggleDark turns every LED off if any is lit, remembering their states.
// Otherwise it restores the remembered states, or the startup scene when
// nothing was remembered. It returns whether the LEDs are now dark.
func (s *Service) ToggleDark() (bool, error) {
	s.mu.Lock()
	var n pending
	defer s.unlock(&n)

	lit := false
	for _, id := range s.order {
		if !s.leds[id].Mirror().IsOff() {
			lit = true
			break
		}
	}

	var errs []error
	if lit {
		s.saved = s.saved[:0]
		b, style, colour := 0, led.StyleNone, led.ColourOff
		off := led.Update{Brightness: &b, Style: &style, Colour: &colour}
		for _, id := range s.order {
			c := s.leds[id]
			s.saved = append(s.saved, c.Mirror())
			if _, err := s.apply(c, off, &n); err != nil {
				errs = append(errs, err)
			}
		}
		s.dark = true
		s.logger.Info("dark mode on")
		return true, errors.Join(errs...)
	}

	if len(s.saved) > 0 {
		for _, st := range s.saved {
			if _, err := s.apply(s.leds[st.ID], led.StateUpdate(st), &n); err != nil {
				errs = append(errs, err)
			}
		}
		s.saved = s.saved[:0]
	} else if s.startup != "" {
		if err := s.applyScene(s.startup, &n); err != nil {
			errs = append(errs, err)
		}
	}
	s.dark = false
	s.logger.Info("dark mode off")
	return false, errors.Join(errs...)
}

// SetScenes replaces the scene table.
func (s *Service) SetScenes(scenes map[string]config.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = make(map[string]config.Scene, len(scenes))
	for name, sc := range scenes {
		s.scenes[name] = sc
	}
	s.logger.Info("scenes loaded", "count", len(scenes))
}

// SetStartupScene changes the scene restored by ToggleDark.
func (s *Service) SetStartupScene(name string) {
	s.mu.Lock()
	s.startup = name
	s.mu.Unlock()
}

// Scenes returns a copy of the scene table.
func (s *Service) Scenes() map[string]config.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]config.Scene, len(s.scenes))
	for name, sc := range s.scenes {
		out[name] = sc
	}
	return out
}

// SceneNames returns the scene names in sorted order.
func (s *Service) SceneNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.scenes))
	for name := range s.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyScene applies the named scene to each LED it mentions and returns
// the state of every LED afterwards.
func (s *Service) ApplyScene(name string) ([]led.State, error) {
	s.mu.Lock()
	var n pending
	defer s.unlock(&n)

	err := s.applyScene(name, &n)
	if err == nil {
		s.dark = false
	}
	states := make([]led.State, 0, len(s.order))
	for _, id := range s.order {
		states = append(states, s.leds[id].Mirror())
	}
	return states, err
}

// applyScene writes a scene. Caller holds the lock.
func (s *Service) applyScene(name string, n *pending) error {
	sc, ok := s.scenes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}

	updates := sc.Updates()
	var errs []error
	for _, id := range s.order {
		u, ok := updates[id]
		if !ok || u.Empty() {
			continue
		}
		if _, err := s.apply(s.leds[id], u, n); err != nil {
			errs = append(errs, fmt.Errorf("scene %s: %w", name, err))
		}
	}
	if len(errs) == 0 {
		s.logger.Info("scene applied", "scene", name)
	}
	return errors.Join(errs...)
}
