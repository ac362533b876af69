// Command nuc-led reads and controls the ring and power LEDs of an Intel NUC.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/control"
	"github.com/sweeney/nuc-led/internal/led"
	"github.com/sweeney/nuc-led/internal/logging"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the resolved options shared by every subcommand.
type app struct {
	opts       config.Options
	configPath string

	// newDriver opens the LED driver. Replaced in tests.
	newDriver func(path string) led.Driver
}

func newApp() *app {
	return &app{
		opts: config.Defaults(),
		newDriver: func(path string) led.Driver {
			return led.NewFileDriver(path)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "nuc-led",
		Short:        "Control the Intel NUC ring and power LEDs",
		Long:         "Read and set the ring and power LEDs through the nuc_led kernel driver, or run as a daemon exposing them over HTTP and MQTT.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(&a.opts, a.configPath, cmd.Flags()); err != nil {
				return err
			}
			logging.Initialize(logging.Config{Level: a.opts.LogLevel, Format: a.opts.LogFormat})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Config file (TOML)")
	a.opts.BindFlags(pf)

	root.AddCommand(
		newServeCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newOffCmd(a),
		newStylesCmd(),
		newColoursCmd(),
		newSceneCmd(a),
	)
	return root
}

// controllers opens both LEDs on the configured driver.
func (a *app) controllers() (ring, power *led.Controller, err error) {
	d := a.newDriver(a.opts.DriverPath)
	if ring, err = led.NewRing(d); err != nil {
		return nil, nil, err
	}
	if power, err = led.NewPower(d); err != nil {
		return nil, nil, err
	}
	return ring, power, nil
}

// service builds a control service with the scenes from the config file.
func (a *app) service() (*control.Service, error) {
	ring, power, err := a.controllers()
	if err != nil {
		return nil, err
	}
	scenes, err := config.LoadScenes(a.configPath)
	if err != nil {
		return nil, err
	}
	return control.New(ring, power,
		control.WithScenes(scenes.Scenes),
		control.WithStartupScene(a.opts.StartupScene),
	), nil
}
