package led

import (
	"errors"
	"fmt"
	"strings"
)

// Controller reads and writes one LED through the shared driver file.
// It keeps a mirror of the last state it read. Not safe for concurrent use.
type Controller struct {
	variant Variant
	driver  Driver
	state   State
}

// NewController creates a controller for variant v and reads its current
// state. If the initial read fails no controller is returned.
func NewController(v Variant, d Driver) (*Controller, error) {
	c := &Controller{
		variant: v,
		driver:  d,
		state:   State{ID: v.ID()},
	}
	if _, err := c.State(); err != nil {
		return nil, fmt.Errorf("init %s led: %w", v.ID(), err)
	}
	return c, nil
}

// NewRing creates a controller for the ring LED.
func NewRing(d Driver) (*Controller, error) {
	return NewController(Ring, d)
}

// NewPower creates a controller for the power LED.
func NewPower(d Driver) (*Controller, error) {
	return NewController(Power, d)
}

// ID returns "ring" or "power".
func (c *Controller) ID() string {
	return c.variant.ID()
}

// Variant returns the LED variant this controller drives.
func (c *Controller) Variant() Variant {
	return c.variant
}

// Styles returns the style codes accepted by SetStyle.
func (c *Controller) Styles() []string {
	return Styles()
}

// ValidColours returns the colours accepted by SetColour.
func (c *Controller) ValidColours() []string {
	return c.variant.ValidColours()
}

// ReadDriverText reads the driver file and splits it into lines.
func (c *Controller) ReadDriverText() ([]string, error) {
	text, err := c.driver.ReadText()
	if err != nil {
		return nil, unavailable(err)
	}
	return strings.Split(text, "\n"), nil
}

// State reads the driver, updates the mirror and returns it. On error the
// mirror keeps its previous value.
func (c *Controller) State() (State, error) {
	lines, err := c.ReadDriverText()
	if err != nil {
		return c.state, err
	}
	own, err := c.variant.OwnLines(lines)
	if err != nil {
		return c.state, err
	}
	parsed, err := ParseState(own)
	if err != nil {
		return c.state, err
	}

	c.state.Brightness = parsed.Brightness
	c.state.Style = parsed.Style
	c.state.Colour = parsed.Colour
	return c.state, nil
}

// Mirror returns the last state read, without touching the driver.
func (c *Controller) Mirror() State {
	return c.state
}

// SetState writes u to the driver, filling omitted fields from a fresh
// read, then re-reads to resynchronise the mirror. Values are written as
// given; use Apply or the single-field setters for validation.
//
// If the write succeeds but the re-read fails, the hardware state is
// unknown and the error is returned; callers should retry State.
func (c *Controller) SetState(u Update) error {
	current, err := c.State()
	if err != nil {
		return err
	}

	brightness, style, colour := current.Brightness, current.Style, current.Colour
	if u.Brightness != nil {
		brightness = *u.Brightness
	}
	if u.Style != nil {
		style = *u.Style
	}
	if u.Colour != nil {
		colour = *u.Colour
	}

	line := FormatCommand(c.variant.ID(), brightness, style, colour)
	if err := c.driver.WriteLine(line); err != nil {
		return fmt.Errorf("set %s: %w", c.variant.ID(), unavailable(err))
	}

	if _, err := c.State(); err != nil {
		return fmt.Errorf("resync %s: %w", c.variant.ID(), err)
	}
	return nil
}

// Apply validates u, clamping brightness, and writes it with SetState.
// Nothing is written when validation fails.
func (c *Controller) Apply(u Update) error {
	if u.Colour != nil && !contains(c.variant.ValidColours(), *u.Colour) {
		return fmt.Errorf("%w: %q for %s led", ErrInvalidColour, *u.Colour, c.variant.ID())
	}
	if u.Style != nil && !ValidStyle(*u.Style) {
		return fmt.Errorf("%w: %q", ErrInvalidStyle, *u.Style)
	}
	if u.Brightness != nil {
		b := clamp(*u.Brightness)
		u.Brightness = &b
	}
	return c.SetState(u)
}

// SetBrightness clamps v to [0,100] and writes it.
func (c *Controller) SetBrightness(v int) error {
	b := clamp(v)
	return c.SetState(Update{Brightness: &b})
}

// SetColour writes colour if it is valid for this LED.
func (c *Controller) SetColour(colour string) error {
	if !contains(c.variant.ValidColours(), colour) {
		return fmt.Errorf("%w: %q for %s led", ErrInvalidColour, colour, c.variant.ID())
	}
	return c.SetState(Update{Colour: &colour})
}

// SetStyle writes style if it is one of the style codes.
func (c *Controller) SetStyle(style string) error {
	if !ValidStyle(style) {
		return fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	return c.SetState(Update{Style: &style})
}

// TurnOff sets brightness 0, style none and colour off in one write.
func (c *Controller) TurnOff() error {
	b, style, colour := 0, StyleNone, ColourOff
	return c.SetState(Update{Brightness: &b, Style: &style, Colour: &colour})
}

// unavailable makes sure err matches ErrDriverUnavailable.
func unavailable(err error) error {
	if errors.Is(err, ErrDriverUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
}
