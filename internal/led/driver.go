package led

import (
	"fmt"
	"os"
)

// Driver is the pseudo-file exposed by the nuc_led kernel module.
type Driver interface {
	// ReadText returns the whole driver output.
	ReadText() (string, error)

	// WriteLine sends one command line to the driver.
	WriteLine(line string) error
}

// FileDriver talks to the driver through its path in procfs.
type FileDriver struct {
	Path string
}

// NewFileDriver returns a driver for path, or DefaultDriverPath if path is empty.
func NewFileDriver(path string) *FileDriver {
	if path == "" {
		path = DefaultDriverPath
	}
	return &FileDriver{Path: path}
}

// ReadText reads the entire pseudo-file.
func (d *FileDriver) ReadText() (string, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
	}
	return string(data), nil
}

// WriteLine opens the pseudo-file for writing and writes line in one call.
// The file is never created: a missing driver is an error.
func (d *FileDriver) WriteLine(line string) error {
	f, err := os.OpenFile(d.Path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrDriverUnavailable, d.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrDriverUnavailable, d.Path, err)
	}
	return nil
}
