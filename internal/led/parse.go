package led

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseState parses the three field lines of one LED, in driver order:
// brightness, blink/fade style, colour. Lines after the third are ignored.
// The returned State has no ID; the caller attaches it.
//
//	Ring LED Brightness: 50%
//	Ring LED Blink/Fade: 1Hz Blink (0x01)
//	Ring LED Color: Cyan (0x01)
func ParseState(lines []string) (State, error) {
	if len(lines) < 3 {
		return State{}, fmt.Errorf("%w: want 3 lines, got %d", ErrMalformedState, len(lines))
	}

	raw, err := fieldValue(lines[0])
	if err != nil {
		return State{}, err
	}
	brightness, err := strconv.Atoi(strings.TrimSpace(strings.Split(raw, "%")[0]))
	if err != nil {
		return State{}, fmt.Errorf("%w: brightness %q", ErrMalformedState, raw)
	}

	raw, err = fieldValue(lines[1])
	if err != nil {
		return State{}, err
	}
	label := strings.Split(raw, " (")[0]
	style, ok := StyleCode(label)
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownStyleLabel, label)
	}

	raw, err = fieldValue(lines[2])
	if err != nil {
		return State{}, err
	}
	colour := strings.ToLower(strings.Split(raw, " (")[0])

	return State{Brightness: brightness, Style: style, Colour: colour}, nil
}

// fieldValue returns the text after the first ": " and before any later one.
func fieldValue(line string) (string, error) {
	parts := strings.Split(line, ": ")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: no value in %q", ErrMalformedState, line)
	}
	return parts[1], nil
}

// FormatState renders s the way the driver prints it for variant v.
// It is the inverse of ParseState for any valid state.
func FormatState(v Variant, s State) []string {
	name := displayName(v.ID())

	label, styleValue := s.Style, byte(0xff)
	if e, ok := styleByCode(s.Style); ok {
		label, styleValue = e.label, e.value
	}

	var colourValue byte = 0xff
	for i, c := range v.ValidColours() {
		if c == s.Colour {
			colourValue = byte(i)
		}
	}

	return []string{
		fmt.Sprintf("%s LED Brightness: %d%%", name, s.Brightness),
		fmt.Sprintf("%s LED Blink/Fade: %s (0x%02x)", name, label, styleValue),
		fmt.Sprintf("%s LED Color: %s (0x%02x)", name, displayName(s.Colour), colourValue),
	}
}

// FormatDriverText renders the whole pseudo-file content for both LEDs.
func FormatDriverText(power, ring State) string {
	var b strings.Builder
	for _, l := range FormatState(Power, power) {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	for _, l := range FormatState(Ring, ring) {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// FormatCommand renders the single line the driver accepts on write.
func FormatCommand(id string, brightness int, style, colour string) string {
	return strings.Join([]string{id, strconv.Itoa(brightness), style, colour}, ",") + "\n"
}

func displayName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
