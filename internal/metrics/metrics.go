// Package metrics exposes LED state and daemon activity as Prometheus metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/nuc-led/internal/led"
)

const namespace = "nucled"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	brightness    *prometheus.GaugeVec
	stateInfo     *prometheus.GaugeVec
	driverWrites  *prometheus.CounterVec
	driverErrors  *prometheus.CounterVec
	mqttCommands  *prometheus.CounterVec
	buttonPresses prometheus.Counter
}

// New registers the collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		brightness: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "led",
			Name:      "brightness",
			Help:      "Last known LED brightness in percent",
		}, []string{"led"}),
		stateInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "led",
			Name:      "state_info",
			Help:      "Current LED style and colour, always 1",
		}, []string{"led", "style", "colour"}),
		driverWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "writes_total",
			Help:      "Command lines written to the LED driver",
		}, []string{"led"}),
		driverErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "errors_total",
			Help:      "Failed LED driver operations",
		}, []string{"led", "op"}),
		mqttCommands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mqtt",
			Name:      "commands_total",
			Help:      "MQTT commands received, by outcome",
		}, []string{"led", "result"}),
		buttonPresses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "button",
			Name:      "presses_total",
			Help:      "Debounced dark-mode button presses",
		}),
	}
}

// ObserveState records the state of one LED.
func (m *Metrics) ObserveState(s led.State) {
	if m == nil {
		return
	}
	m.brightness.WithLabelValues(s.ID).Set(float64(s.Brightness))
	m.stateInfo.DeletePartialMatch(prometheus.Labels{"led": s.ID})
	m.stateInfo.WithLabelValues(s.ID, s.Style, s.Colour).Set(1)
}

// DriverWrite counts a successful write for id.
func (m *Metrics) DriverWrite(id string) {
	if m == nil {
		return
	}
	m.driverWrites.WithLabelValues(id).Inc()
}

// DriverError counts a failed op ("read" or "write") for id.
func (m *Metrics) DriverError(id, op string) {
	if m == nil {
		return
	}
	m.driverErrors.WithLabelValues(id, op).Inc()
}

// MQTTCommand counts a received command. result is "ok", "invalid" or "error".
func (m *Metrics) MQTTCommand(id, result string) {
	if m == nil {
		return
	}
	m.mqttCommands.WithLabelValues(id, result).Inc()
}

// ButtonPress counts one button press.
func (m *Metrics) ButtonPress() {
	if m == nil {
		return
	}
	m.buttonPresses.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
