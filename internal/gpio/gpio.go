// Package gpio reads the optional dark-mode push button.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the button input.
type Reader interface {
	// Read returns true while the button is pressed.
	// The line is active-low: raw 0 = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO chip the button line is requested from.
const DefaultChip = "gpiochip0"
