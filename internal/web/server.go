// Package web serves the status page and the LED control API.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/sweeney/nuc-led/internal/config"
	"github.com/sweeney/nuc-led/internal/control"
	"github.com/sweeney/nuc-led/internal/led"
	"github.com/sweeney/nuc-led/internal/logging"
	"github.com/sweeney/nuc-led/internal/status"
)

// LEDService is the part of the control service the API drives.
type LEDService interface {
	Get(id string) (led.State, error)
	Apply(id string, u led.Update) (led.State, error)
	TurnOff(id string) (led.State, error)
	Refresh() ([]led.State, error)
	Capabilities(id string) (control.Capabilities, error)
	Scenes() map[string]config.Scene
	ApplyScene(name string) ([]led.State, error)
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// Server serves the status page and API over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	leds       LEDService
	api        huma.API
	metrics    http.Handler
}

// New creates a Server that reads state from tracker and controls the
// LEDs through svc.
func New(addr string, tracker *status.Tracker, svc LEDService, opts ...Option) *Server {
	s := &Server{tracker: tracker, leds: svc}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	cfg := huma.DefaultConfig("NUC LED API", "1.0.0")
	cfg.Info.Description = "Control the ring and power LEDs of an Intel NUC"
	cfg.Servers = []*huma.Server{}
	s.api = humago.New(mux, cfg)
	s.api.UseMiddleware(loggingMiddleware)
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		logging.GetLogger("http").Error("render index", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}
