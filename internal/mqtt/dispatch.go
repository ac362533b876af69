package mqtt

import (
	"errors"
	"log/slog"

	"github.com/sweeney/nuc-led/internal/led"
)

// Result labels for handled commands.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Applier performs LED changes. Satisfied by *control.Service.
type Applier interface {
	Apply(id string, u led.Update) (led.State, error)
	TurnOff(id string) (led.State, error)
}

// Dispatcher parses command messages and applies them. Failures are
// logged and counted, never fatal.
type Dispatcher struct {
	Topics Topics
	Target Applier
	Logger *slog.Logger

	// Result, if set, is called once per message with the LED id (or
	// "unknown") and one of the Result* labels.
	Result func(id, result string)
}

// Handle is a MessageHandler.
func (d *Dispatcher) Handle(topic string, payload []byte) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cmd, err := d.Topics.ParseCommand(topic, payload)
	if err != nil {
		logger.Warn("ignoring command", "topic", topic, "error", err)
		d.report("unknown", ResultInvalid)
		return
	}

	var st led.State
	if cmd.Off {
		st, err = d.Target.TurnOff(cmd.LED)
	} else {
		st, err = d.Target.Apply(cmd.LED, cmd.Update)
	}
	switch {
	case err == nil:
		logger.Info("command applied", "led", cmd.LED, "brightness", st.Brightness, "style", st.Style, "colour", st.Colour)
		d.report(cmd.LED, ResultOK)
	case errors.Is(err, led.ErrInvalidColour), errors.Is(err, led.ErrInvalidStyle):
		logger.Warn("rejected command", "led", cmd.LED, "error", err)
		d.report(cmd.LED, ResultInvalid)
	default:
		logger.Error("command failed", "led", cmd.LED, "error", err)
		d.report(cmd.LED, ResultError)
	}
}

func (d *Dispatcher) report(id, result string) {
	if d.Result != nil {
		d.Result(id, result)
	}
}
