package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/sweeney/nuc-led/internal/led"
)

// Scene is a named pair of LED updates. A nil side leaves that LED alone.
type Scene struct {
	Ring  *led.Update `toml:"ring" json:"ring,omitempty"`
	Power *led.Update `toml:"power" json:"power,omitempty"`
}

// Updates returns the non-nil updates keyed by LED ID.
func (s Scene) Updates() map[string]led.Update {
	out := make(map[string]led.Update, 2)
	if s.Ring != nil {
		out[led.RingID] = *s.Ring
	}
	if s.Power != nil {
		out[led.PowerID] = *s.Power
	}
	return out
}

// ScheduleEntry applies Scene whenever Spec fires. Spec is a five-field
// cron expression, a descriptor such as "@hourly", or "@every <duration>".
type ScheduleEntry struct {
	Spec  string `toml:"spec" json:"spec"`
	Scene string `toml:"scene" json:"scene"`
}

// SceneFile is the scene and schedule part of the config file.
type SceneFile struct {
	Scenes   map[string]Scene `toml:"scenes"`
	Schedule []ScheduleEntry  `toml:"schedule"`
}

// Names returns the scene names in sorted order.
func (f SceneFile) Names() []string {
	names := make([]string, 0, len(f.Scenes))
	for name := range f.Scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks colours and styles against each LED variant and that
// every schedule entry names a known scene.
func (f SceneFile) Validate() error {
	var errs []error
	for _, name := range f.Names() {
		for id, u := range f.Scenes[name].Updates() {
			if err := validateUpdate(id, u); err != nil {
				errs = append(errs, fmt.Errorf("scene %s: %w", name, err))
			}
		}
	}
	for i, e := range f.Schedule {
		if e.Spec == "" {
			errs = append(errs, fmt.Errorf("schedule[%d]: empty spec", i))
		}
		if _, ok := f.Scenes[e.Scene]; !ok {
			errs = append(errs, fmt.Errorf("schedule[%d]: unknown scene %q", i, e.Scene))
		}
	}
	return errors.Join(errs...)
}

func validateUpdate(id string, u led.Update) error {
	v, ok := led.VariantByID(id)
	if !ok {
		return fmt.Errorf("unknown led %q", id)
	}
	if u.Colour != nil && !slices.Contains(v.ValidColours(), *u.Colour) {
		return fmt.Errorf("%s: %w %q", id, led.ErrInvalidColour, *u.Colour)
	}
	if u.Style != nil && !led.ValidStyle(*u.Style) {
		return fmt.Errorf("%s: %w %q", id, led.ErrInvalidStyle, *u.Style)
	}
	return nil
}

// LoadScenes reads scenes and schedule entries from the config file at
// path. A missing file yields an empty SceneFile.
func LoadScenes(path string) (SceneFile, error) {
	var f SceneFile
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read scenes: %w", err)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse scenes %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("validate scenes %s: %w", path, err)
	}
	return f, nil
}
