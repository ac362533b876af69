package web

import (
	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/control"
	"github.com/sweeney/nuc-led/internal/led"
)

// HealthData is the health check body.
type HealthData struct {
	Status        string `json:"status" example:"ok" doc:"ok, or degraded when the driver cannot be read"`
	UptimeSeconds int64  `json:"uptime_seconds" doc:"Seconds since the daemon started"`
	MQTTConnected bool   `json:"mqtt_connected" doc:"Whether the MQTT broker connection is up"`
	DarkMode      bool   `json:"dark_mode" doc:"Whether the button has blanked the LEDs"`
	Error         string `json:"error,omitempty" doc:"Driver error when degraded"`
}

// HealthResponse wraps HealthData.
type HealthResponse struct {
	Body HealthData
}

// LEDPath selects one LED.
type LEDPath struct {
	ID string `path:"id" doc:"LED identifier (ring or power)"`
}

// LEDResponse carries one LED state.
type LEDResponse struct {
	Body led.State
}

// LEDListResponse carries every LED state.
type LEDListResponse struct {
	Body struct {
		LEDs []led.State `json:"leds" doc:"LED states in ring, power order"`
	}
}

// LEDUpdateRequest changes some or all of an LED's fields.
type LEDUpdateRequest struct {
	ID   string `path:"id" doc:"LED identifier (ring or power)"`
	Body led.Update
}

// CapabilitiesResponse lists what an LED accepts.
type CapabilitiesResponse struct {
	Body control.Capabilities
}

// ScenesResponse lists configured scenes.
type ScenesResponse struct {
	Body struct {
		Scenes map[string]config.Scene `json:"scenes" doc:"Configured scenes by name"`
	}
}

// ScenePath selects one scene.
type ScenePath struct {
	Name string `path:"name" doc:"Scene name"`
}
