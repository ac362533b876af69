package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sweeney/nuc-led/internal/control"
	"github.com/sweeney/nuc-led/internal/led"
	"github.com/sweeney/nuc-led/internal/logging"
)

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Report daemon and driver health",
		Tags:        []string{"health"},
	}, s.health)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "List LEDs",
		Description: "Read the current state of every LED from the driver",
		Tags:        []string{"leds"},
		Errors:      []int{503},
	}, s.listLEDs)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led",
		Method:      http.MethodGet,
		Path:        "/api/leds/{id}",
		Summary:     "Get LED",
		Description: "Read the current state of one LED from the driver",
		Tags:        []string{"leds"},
		Errors:      []int{404, 503},
	}, func(ctx context.Context, in *LEDPath) (*LEDResponse, error) {
		st, err := s.leds.Get(in.ID)
		if err != nil {
			return nil, apiError("Failed to read LED", err)
		}
		return &LEDResponse{Body: st}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-led",
		Method:      http.MethodPatch,
		Path:        "/api/leds/{id}",
		Summary:     "Update LED",
		Description: "Set any of brightness, style and colour. Brightness is clamped to 0..100.",
		Tags:        []string{"leds"},
		Errors:      []int{404, 422, 503},
	}, func(ctx context.Context, in *LEDUpdateRequest) (*LEDResponse, error) {
		st, err := s.leds.Apply(in.ID, in.Body)
		if err != nil {
			return nil, apiError("Failed to update LED", err)
		}
		return &LEDResponse{Body: st}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "turn-off-led",
		Method:      http.MethodPost,
		Path:        "/api/leds/{id}/off",
		Summary:     "Turn off LED",
		Tags:        []string{"leds"},
		Errors:      []int{404, 503},
	}, func(ctx context.Context, in *LEDPath) (*LEDResponse, error) {
		st, err := s.leds.TurnOff(in.ID)
		if err != nil {
			return nil, apiError("Failed to turn off LED", err)
		}
		return &LEDResponse{Body: st}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/{id}/capabilities",
		Summary:     "Get LED capabilities",
		Description: "List the colours and styles an LED accepts",
		Tags:        []string{"leds"},
		Errors:      []int{404},
	}, func(ctx context.Context, in *LEDPath) (*CapabilitiesResponse, error) {
		c, err := s.leds.Capabilities(in.ID)
		if err != nil {
			return nil, apiError("Failed to get capabilities", err)
		}
		return &CapabilitiesResponse{Body: c}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-scenes",
		Method:      http.MethodGet,
		Path:        "/api/scenes",
		Summary:     "List scenes",
		Tags:        []string{"scenes"},
	}, func(ctx context.Context, in *struct{}) (*ScenesResponse, error) {
		resp := &ScenesResponse{}
		resp.Body.Scenes = s.leds.Scenes()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-scene",
		Method:      http.MethodPost,
		Path:        "/api/scenes/{name}",
		Summary:     "Apply scene",
		Tags:        []string{"scenes"},
		Errors:      []int{404, 503},
	}, func(ctx context.Context, in *ScenePath) (*LEDListResponse, error) {
		states, err := s.leds.ApplyScene(in.Name)
		if err != nil {
			return nil, apiError("Failed to apply scene", err)
		}
		resp := &LEDListResponse{}
		resp.Body.LEDs = states
		return resp, nil
	})
}

func (s *Server) health(ctx context.Context, in *struct{}) (*HealthResponse, error) {
	snap := s.tracker.Snapshot()
	body := HealthData{
		Status:        "ok",
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		MQTTConnected: snap.MQTTConnected,
		DarkMode:      snap.DarkMode,
	}
	if _, err := s.leds.Refresh(); err != nil {
		body.Status = "degraded"
		body.Error = err.Error()
	}
	return &HealthResponse{Body: body}, nil
}

func (s *Server) listLEDs(ctx context.Context, in *struct{}) (*LEDListResponse, error) {
	states, err := s.leds.Refresh()
	if err != nil {
		return nil, apiError("Failed to read LEDs", err)
	}
	resp := &LEDListResponse{}
	resp.Body.LEDs = states
	return resp, nil
}

// apiError maps control and led errors to HTTP status codes.
func apiError(msg string, err error) error {
	switch {
	case errors.Is(err, control.ErrUnknownLED), errors.Is(err, control.ErrUnknownScene):
		return huma.Error404NotFound(msg, err)
	case errors.Is(err, led.ErrInvalidColour), errors.Is(err, led.ErrInvalidStyle):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.Is(err, led.ErrDriverUnavailable):
		return huma.Error503ServiceUnavailable(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}

// loggingMiddleware logs each API request at a level matching its status.
func loggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	status := ctx.Status()
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	logging.GetLogger("http").LogAttrs(ctx.Context(), level, "request",
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.URL().Path),
		slog.String("remote_addr", ctx.RemoteAddr()),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)
}
