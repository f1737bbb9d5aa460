// Package control serves the local HTTP API of a running watch session:
// status, debug toggling, export activation, and the export relay.
package control

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/passmed2anki/engine"
)

const maxBody = 1 << 20

// Engine is the part of engine.Engine the API drives.
type Engine interface {
	Status() engine.Status
	Post(ctx context.Context, ev engine.Event) error
}

// Relay answers raw relay messages (anki.Relay).
type Relay interface {
	Handle(ctx context.Context, raw []byte) ([]byte, bool)
}

// Service holds the API dependencies.
type Service struct {
	eng    Engine
	relay  Relay
	logger *slog.Logger
}

// New creates a Service. relay may be nil to disable POST /relay.
func New(eng Engine, relay Relay, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{eng: eng, relay: relay, logger: logger}
}

// Handler returns a router with every endpoint mounted.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, loopbackOnly, apiHeaders, s.requestLog)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP mounts the endpoints on r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/status", s.handleStatus)
	r.Post("/debug", s.handleDebug)
	r.Post("/export", s.handleExport)
	if s.relay != nil {
		r.Post("/relay", s.handleRelay)
	}
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Status())
}

// handleDebug accepts {"__passmed2anki":{"debug":bool}}. Anything else is
// ignored with 204.
func (s *Service) handleDebug(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	debug, ok := engine.ParseDebugMessage(raw)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.eng.Post(r.Context(), engine.Event{Kind: engine.EventDebug, Debug: debug}); err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}
	s.logger.Info("control: debug toggled", "debug", debug)
	w.WriteHeader(http.StatusAccepted)
}

// handleExport clicks the trigger. The outcome shows up in /status.
func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.eng.Status().TriggerShown {
		http.Error(w, "no trigger on the page", http.StatusConflict)
		return
	}
	if err := s.eng.Post(r.Context(), engine.Event{Kind: engine.EventActivate}); err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleRelay(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	out, ok := s.relay.Handle(r.Context(), raw)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
