package led

import "fmt"

// Variant is what differs between the ring and power LEDs.
type Variant interface {
	// ID is the identifier written as the first field of a driver command.
	ID() string

	// ValidColours returns the colours this LED accepts, "off" included.
	ValidColours() []string

	// OwnLines picks this LED's three lines out of the full driver text.
	// The offsets are tied to the driver's fixed output layout.
	OwnLines(all []string) ([]string, error)
}

// Variant identifiers.
const (
	RingID  = "ring"
	PowerID = "power"
)

var (
	// Ring is the multi-colour ring around the front panel.
	Ring Variant = ring{}

	// Power is the power button LED.
	Power Variant = power{}
)

var (
	ringColours  = []string{"off", "cyan", "pink", "yellow", "blue", "red", "green", "white"}
	powerColours = []string{"off", "blue", "amber"}
)

// VariantByID returns the variant with the given identifier.
func VariantByID(id string) (Variant, bool) {
	switch id {
	case RingID:
		return Ring, true
	case PowerID:
		return Power, true
	}
	return nil, false
}

type ring struct{}

func (ring) ID() string { return RingID }

func (ring) ValidColours() []string {
	return append([]string(nil), ringColours...)
}

// OwnLines returns lines [4, len-2). The last two lines are the blank
// separator and the empty string after the trailing newline.
func (ring) OwnLines(all []string) ([]string, error) {
	if len(all) < 9 {
		return nil, fmt.Errorf("%w: ring needs 9 lines, driver gave %d", ErrMalformedState, len(all))
	}
	return all[4 : len(all)-2], nil
}

type power struct{}

func (power) ID() string { return PowerID }

func (power) ValidColours() []string {
	return append([]string(nil), powerColours...)
}

// OwnLines returns lines [0, 3).
func (power) OwnLines(all []string) ([]string, error) {
	if len(all) < 3 {
		return nil, fmt.Errorf("%w: power needs 3 lines, driver gave %d", ErrMalformedState, len(all))
	}
	return all[:3], nil
}
