package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/control"
	"github.com/sweeney/nuc-led/internal/gpio"
	"github.com/sweeney/nuc-led/internal/led"
	"github.com/sweeney/nuc-led/internal/logging"
	"github.com/sweeney/nuc-led/internal/logic"
	"github.com/sweeney/nuc-led/internal/metrics"
	"github.com/sweeney/nuc-led/internal/mqtt"
	"github.com/sweeney/nuc-led/internal/schedule"
	"github.com/sweeney/nuc-led/internal/status"
	"github.com/sweeney/nuc-led/internal/web"
)

// buttonPoll is how often the dark-mode button is sampled.
const buttonPoll = 10 * time.Millisecond

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LED daemon",
		Long:  "Poll the LED driver and expose the LEDs over HTTP and MQTT, with an optional dark-mode button and scheduled scenes.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.run()
		},
	}
}

func (a *app) run() error {
	logger := logging.GetLogger("main")
	opts := a.opts
	if err := opts.Validate(); err != nil {
		return err
	}

	ring, power, err := a.controllers()
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}

	scenes, err := config.LoadScenes(a.configPath)
	if err != nil {
		return fmt.Errorf("load scenes: %w", err)
	}
	svc := control.New(ring, power,
		control.WithScenes(scenes.Scenes),
		control.WithStartupScene(opts.StartupScene),
	)

	var m *metrics.Metrics
	if opts.Metrics {
		m = metrics.New()
	}

	// Status tracker exists before STARTUP so the snapshot is available
	tracker := status.NewTracker(time.Now(), status.Config{
		DriverPath:  opts.DriverPath,
		PollMs:      opts.Poll.Milliseconds(),
		HeartbeatMs: opts.Heartbeat.Milliseconds(),
		Broker:      opts.MQTTBroker,
		TopicPrefix: opts.TopicPrefix,
		HTTPAddr:    opts.HTTPAddr,
		ButtonPin:   opts.ButtonPin,
		Metrics:     opts.Metrics,
	})

	topics := mqtt.Topics{Prefix: opts.TopicPrefix}
	var (
		publisher  mqtt.Publisher = noopPublisher{}
		mqttStatus mqtt.ConnectionStatus
	)
	if opts.MQTTBroker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:    opts.MQTTBroker,
			ClientID:  opts.MQTTClientID,
			Topics:    topics,
			Logger:    logging.GetLogger("mqtt"),
			OnConnect: func() { tracker.SetMQTTConnected(true) },
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		p.OnCommand((&mqtt.Dispatcher{
			Topics: topics,
			Target: svc,
			Logger: logging.GetLogger("mqtt"),
			Result: m.MQTTCommand,
		}).Handle)
		publisher, mqttStatus = p, p
	}

	wireHooks(svc, tracker, m, publisher, logger)
	for _, s := range svc.Snapshot() {
		tracker.SetLED(s)
		m.ObserveState(s)
		if err := publisher.PublishState(s); err != nil {
			logger.Warn("failed to publish initial state", "led", s.ID, "error", err)
		}
	}

	if opts.StartupScene != "" {
		if _, err := svc.ApplyScene(opts.StartupScene); err != nil {
			logger.Warn("startup scene failed", "scene", opts.StartupScene, "error", err)
		}
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		logger.Warn("failed to publish startup event", "error", err)
	}

	if opts.HTTPAddr != "" {
		var webOpts []web.Option
		if m != nil {
			webOpts = append(webOpts, web.WithMetrics(m.Handler()))
		}
		srv := web.New(opts.HTTPAddr, tracker, svc, webOpts...)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logger.Info("http server listening", "addr", opts.HTTPAddr)
	}

	sched := schedule.New(svc, logging.GetLogger("schedule"))
	if err := sched.Replace(scenes.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	watcher := config.NewWatcher(a.configPath, config.LoadScenes, config.DefaultDebounce, logging.GetLogger("config"))
	watcher.OnReload(func(f config.SceneFile) {
		svc.SetScenes(f.Scenes)
		if err := sched.Replace(f.Schedule); err != nil {
			logger.Warn("schedule not reloaded", "error", err)
		}
		logger.Info("scenes reloaded", "scenes", len(f.Scenes), "schedule", len(f.Schedule))
	})
	watcher.OnError(func(err error) {
		logger.Warn("config reload failed", "error", err)
	})
	if err := watcher.Start(); err != nil {
		logger.Warn("config watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	var button gpio.Reader
	if opts.ButtonPin >= 0 {
		r, err := gpio.NewRealReader(opts.ButtonChip, opts.ButtonPin)
		if err != nil {
			return fmt.Errorf("init button: %w", err)
		}
		defer r.Close()
		button = r
	}

	logger.Info("started",
		"driver", opts.DriverPath,
		"poll", opts.Poll,
		"broker", opts.MQTTBroker,
		"heartbeat", opts.Heartbeat,
		"button_pin", opts.ButtonPin,
	)

	poll := time.NewTicker(opts.Poll)
	defer poll.Stop()

	var t ticks
	t.poll = poll.C
	if button != nil {
		bt := time.NewTicker(buttonPoll)
		defer bt.Stop()
		t.button = bt.C
	}
	if wd, err := daemon.SdWatchdogEnabled(false); err == nil && wd > 0 {
		wt := time.NewTicker(wd / 2)
		defer wt.Stop()
		t.watchdog = wt.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		svc:        svc,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		metrics:    m,
		button:     button,
		debounce:   opts.ButtonDebounce,
		heartbeat:  opts.Heartbeat,
		notify:     sdNotify(logger),
		logger:     logger,
	}
	l.notify(daemon.SdNotifyReady)
	return l.run(time.Now, t, sigCh)
}

// wireHooks routes LED changes to the status tracker, metrics and MQTT.
func wireHooks(svc *control.Service, tracker *status.Tracker, m *metrics.Metrics, publisher mqtt.Publisher, logger *slog.Logger) {
	svc.AddHooks(control.Hooks{
		Change: func(s led.State) {
			tracker.SetLED(s)
			tracker.SetDarkMode(svc.DarkMode())
			m.ObserveState(s)
			if err := publisher.PublishState(s); err != nil {
				logger.Warn("publish state failed", "led", s.ID, "error", err)
			}
		},
		Write: func(id string) {
			tracker.RecordWrite()
			m.DriverWrite(id)
		},
		Error: func(id, op string, err error) {
			tracker.RecordError(err, time.Now())
			m.DriverError(id, op)
		},
	})
}

func sdNotify(logger *slog.Logger) func(string) {
	return func(state string) {
		if _, err := daemon.SdNotify(false, state); err != nil {
			logger.Debug("sd_notify failed", "state", state, "error", err)
		}
	}
}

// ticks are the event sources of the main loop. A nil channel disables
// its source.
type ticks struct {
	poll     <-chan time.Time
	button   <-chan time.Time
	watchdog <-chan time.Time
}

type loop struct {
	svc        *control.Service
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	metrics    *metrics.Metrics
	button     gpio.Reader
	debounce   time.Duration
	heartbeat  time.Duration
	notify     func(state string)
	logger     *slog.Logger
}

func (l *loop) run(now func() time.Time, t ticks, sig <-chan os.Signal) error {
	startTime := now()
	heartbeat := logic.NewHeartbeat(l.heartbeat, startTime)
	debouncer := logic.NewDebouncer(l.debounce)

	for {
		select {
		case s := <-sig:
			l.logger.Info("shutting down", "signal", s)
			l.notify(daemon.SdNotifyStopping)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.syncMQTT()
			snap := l.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				l.logger.Warn("failed to publish shutdown event", "error", err)
			}
			return nil

		case <-t.poll:
			tm := now()
			if _, err := l.svc.Refresh(); err != nil {
				l.logger.Warn("driver poll failed", "error", err)
			}
			l.syncMQTT()

			if hb := heartbeat.Check(tm); hb != nil {
				l.logger.Info("heartbeat", "uptime", hb.Uptime)
				snap := l.tracker.Snapshot()
				event := mqtt.SystemEvent{
					Timestamp:  hb.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := l.publisher.PublishSystem(event); err != nil {
					l.logger.Warn("heartbeat publish failed", "error", err)
				}
			}

		case <-t.button:
			if l.button == nil {
				continue
			}
			pressed, err := l.button.Read()
			if err != nil {
				l.logger.Warn("button read failed", "error", err)
				continue
			}
			ev := debouncer.Process(logic.Input{Pressed: pressed, Time: now()})
			if ev == nil || ev.Type != logic.EventPressed {
				continue
			}
			dark, err := l.svc.ToggleDark()
			if err != nil {
				l.logger.Warn("dark mode toggle incomplete", "error", err)
			}
			l.tracker.SetDarkMode(dark)
			l.tracker.SetButtonPresses(debouncer.CountsSnapshot().Presses)
			l.metrics.ButtonPress()

		case <-t.watchdog:
			l.notify(daemon.SdNotifyWatchdog)
		}
	}
}

func (l *loop) syncMQTT() {
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

// noopPublisher stands in when no broker is configured.
type noopPublisher struct{}

func (noopPublisher) PublishState(led.State) error         { return nil }
func (noopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (noopPublisher) Close() error                         { return nil }
