// Package led reads and writes the Intel NUC LED driver pseudo-file.
// The driver exposes the ring and power LEDs through one text file; this
// package parses its output into State values and writes updates back.
// It holds no locks and does no logging: callers arbitrate access.
package led

import "errors"

// DefaultDriverPath is where the nuc_led kernel module exposes its state.
const DefaultDriverPath = "/proc/acpi/nuc_led"

// Colour used by every variant to mean the LED is dark.
const ColourOff = "off"

// StyleNone is the "Always On" style code.
const StyleNone = "none"

var (
	// ErrDriverUnavailable means the pseudo-file could not be opened, read or written.
	ErrDriverUnavailable = errors.New("led driver unavailable")

	// ErrInvalidColour means the colour is not valid for the LED variant.
	ErrInvalidColour = errors.New("invalid colour")

	// ErrInvalidStyle means the style is not one of the seven style codes.
	ErrInvalidStyle = errors.New("invalid style")

	// ErrUnknownStyleLabel means the driver reported a style label we do not know.
	ErrUnknownStyleLabel = errors.New("unknown style label")

	// ErrMalformedState means the driver text does not match the expected layout.
	ErrMalformedState = errors.New("malformed driver state")
)

// State is the state of one LED as reported by the driver.
type State struct {
	ID         string `json:"led"`
	Brightness int    `json:"brightness"`
	Style      string `json:"style"`
	Colour     string `json:"colour"`
}

// IsOff reports whether the LED emits no light.
func (s State) IsOff() bool {
	return s.Brightness == 0 || s.Colour == ColourOff
}

// Update is a partial state change. Nil fields keep their current value.
type Update struct {
	Brightness *int    `json:"brightness,omitempty" toml:"brightness"`
	Style      *string `json:"style,omitempty" toml:"style"`
	Colour     *string `json:"colour,omitempty" toml:"colour"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Brightness == nil && u.Style == nil && u.Colour == nil
}

// StateUpdate returns an Update that sets every field of s.
func StateUpdate(s State) Update {
	b, st, c := s.Brightness, s.Style, s.Colour
	return Update{Brightness: &b, Style: &st, Colour: &c}
}

type styleEntry struct {
	label string
	code  string
	value byte // register value the driver prints in parentheses
}

// styleTable is in driver declaration order.
var styleTable = [...]styleEntry{
	{"Always On", "none", 0x04},
	{"1Hz Blink", "blink_fast", 0x01},
	{"0.5Hz Blink", "blink_medium", 0x02},
	{"0.25Hz Blink", "blink_slow", 0x03},
	{"1Hz Fade", "fade_fast", 0x05},
	{"0.5Hz Fade", "fade_medium", 0x06},
	{"0.25Hz Fade", "fade_slow", 0x07},
}

// Styles returns the seven style codes in declaration order.
func Styles() []string {
	codes := make([]string, len(styleTable))
	for i, e := range styleTable {
		codes[i] = e.code
	}
	return codes
}

// ValidStyle reports whether code is one of the style codes.
func ValidStyle(code string) bool {
	_, ok := StyleLabel(code)
	return ok
}

// StyleCode maps a driver label such as "1Hz Blink" to its code.
func StyleCode(label string) (string, bool) {
	for _, e := range styleTable {
		if e.label == label {
			return e.code, true
		}
	}
	return "", false
}

// StyleLabel maps a style code to the label the driver prints.
func StyleLabel(code string) (string, bool) {
	e, ok := styleByCode(code)
	return e.label, ok
}

func styleByCode(code string) (styleEntry, bool) {
	for _, e := range styleTable {
		if e.code == code {
			return e, true
		}
	}
	return styleEntry{}, false
}

func clamp(v int) int {
	return max(0, min(100, v))
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
