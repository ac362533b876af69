// Package config loads daemon options and the scene/schedule file.
// Precedence: CLI flags the user set > NUCLED_* environment > TOML file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "NUCLED_"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "/etc/nuc-led/config.toml"

// Options are the daemon settings. Each field is reachable as a flag, a
// dotted TOML key and an environment variable.
type Options struct {
	DriverPath     string        `flag:"driver" toml:"driver.path" env:"DRIVER_PATH" help:"LED driver pseudo-file"`
	HTTPAddr       string        `flag:"http" toml:"http.addr" env:"HTTP_ADDR" help:"HTTP listen address (empty to disable)"`
	MQTTBroker     string        `flag:"broker" toml:"mqtt.broker" env:"MQTT_BROKER" help:"MQTT broker address (empty to disable)"`
	MQTTClientID   string        `flag:"client-id" toml:"mqtt.client_id" env:"MQTT_CLIENT_ID" help:"MQTT client ID"`
	TopicPrefix    string        `flag:"topic-prefix" toml:"mqtt.topic_prefix" env:"MQTT_TOPIC_PREFIX" help:"MQTT topic prefix"`
	Poll           time.Duration `flag:"poll" toml:"poll_interval" env:"POLL_INTERVAL" help:"Driver polling interval"`
	Heartbeat      time.Duration `flag:"heartbeat" toml:"heartbeat" env:"HEARTBEAT" help:"Heartbeat interval (0 to disable)"`
	ButtonChip     string        `flag:"button-chip" toml:"button.chip" env:"BUTTON_CHIP" help:"GPIO chip for the dark-mode button"`
	ButtonPin      int           `flag:"button-pin" toml:"button.pin" env:"BUTTON_PIN" help:"GPIO line of the dark-mode button (-1 to disable)"`
	ButtonDebounce time.Duration `flag:"button-debounce" toml:"button.debounce" env:"BUTTON_DEBOUNCE" help:"Button debounce duration"`
	Metrics        bool          `flag:"metrics" toml:"metrics.enabled" env:"METRICS_ENABLED" help:"Serve Prometheus metrics on /metrics"`
	StartupScene   string        `flag:"startup-scene" toml:"startup_scene" env:"STARTUP_SCENE" help:"Scene applied at startup and when leaving dark mode"`
	LogLevel       string        `flag:"log-level" toml:"logging.level" env:"LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat      string        `flag:"log-format" toml:"logging.format" env:"LOG_FORMAT" help:"Log format (text, json)"`
}

// Defaults returns the built-in option values.
func Defaults() Options {
	return Options{
		DriverPath:     "/proc/acpi/nuc_led",
		HTTPAddr:       ":8080",
		MQTTClientID:   "nuc-led",
		TopicPrefix:    "nuc/led",
		Poll:           5 * time.Second,
		Heartbeat:      15 * time.Minute,
		ButtonChip:     "gpiochip0",
		ButtonPin:      -1,
		ButtonDebounce: 50 * time.Millisecond,
		Metrics:        true,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Validate reports options the daemon cannot run with.
func (o Options) Validate() error {
	if o.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", o.Poll)
	}
	if o.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", o.Heartbeat)
	}
	if o.ButtonDebounce < 0 {
		return fmt.Errorf("button debounce must not be negative, got %v", o.ButtonDebounce)
	}
	return nil
}

// BindFlags registers one flag per option on fs, defaulting to the
// current values of o.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	v := reflect.ValueOf(o).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, help := f.Tag.Get("flag"), f.Tag.Get("help")
		if name == "" {
			continue
		}
		switch p := v.Field(i).Addr().Interface().(type) {
		case *string:
			fs.StringVar(p, name, *p, help)
		case *int:
			fs.IntVar(p, name, *p, help)
		case *bool:
			fs.BoolVar(p, name, *p, help)
		case *time.Duration:
			fs.DurationVar(p, name, *p, help)
		}
	}
}

// Load applies the TOML file at path and then the environment to opts,
// skipping any option whose flag was set on fs. A missing file is not an
// error. fs may be nil.
func Load(opts *Options, path string, fs *pflag.FlagSet) error {
	changed := make(map[string]bool)
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = true
		})
	}

	var file map[string]any
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	v := reflect.ValueOf(opts).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if changed[f.Tag.Get("flag")] {
			continue
		}
		if key := f.Tag.Get("toml"); key != "" && file != nil {
			if raw := nestedValue(file, key); raw != nil {
				if err := setField(v.Field(i), raw); err != nil {
					return fmt.Errorf("config %s: %w", key, err)
				}
			}
		}
		if env := f.Tag.Get("env"); env != "" {
			if raw, ok := os.LookupEnv(EnvPrefix + env); ok && raw != "" {
				if err := setField(v.Field(i), raw); err != nil {
					return fmt.Errorf("env %s%s: %w", EnvPrefix, env, err)
				}
			}
		}
	}
	return nil
}

// nestedValue retrieves a value from a decoded TOML tree using dot notation.
func nestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data
	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField stores raw, a TOML value or an env string, into field.
func setField(field reflect.Value, raw any) error {
	if field.Type() == durationType {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("want duration string, got %T", raw)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", raw)
		}
		field.SetString(s)
	case reflect.Int:
		switch n := raw.(type) {
		case int64:
			field.SetInt(n)
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return err
			}
			field.SetInt(int64(i))
		default:
			return fmt.Errorf("want integer, got %T", raw)
		}
	case reflect.Bool:
		switch b := raw.(type) {
		case bool:
			field.SetBool(b)
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return err
			}
			field.SetBool(parsed)
		default:
			return fmt.Errorf("want bool, got %T", raw)
		}
	}
	return nil
}
