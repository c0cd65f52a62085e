// Package api serves a read-only HTTP view of the running simulation.
//
// The simulation is single-threaded, so handlers never touch it directly.
// The tick loop publishes an Observation after every committed tick and
// handlers read the latest one.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/talgya/critter-world/internal/engine"
)

// Observation is an immutable copy of what the API reports.
type Observation struct {
	RunID  string             `json:"run_id"`
	Report engine.Report      `json:"report"`
	Stats  *engine.Statistics `json:"stats,omitempty"`
	Events []engine.Event     `json:"-"`
	At     time.Time          `json:"at"`
}

// Observe copies the published state of a simulation.
func Observe(sim *engine.Simulation, r engine.Report) *Observation {
	events := make([]engine.Event, len(sim.Events))
	copy(events, sim.Events)
	return &Observation{
		RunID:  sim.RunID,
		Report: r,
		Stats:  sim.Stats,
		Events: events,
		At:     time.Now().UTC(),
	}
}

// Server serves the latest observation over HTTP.
type Server struct {
	Port    int
	Limiter *RateLimiter // Optional

	latest atomic.Pointer[Observation]
	srv    *http.Server
}

// Publish replaces the observation served to clients. Safe to call from
// the tick loop while handlers run.
func (s *Server) Publish(o *Observation) {
	s.latest.Store(o)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	return corsMiddleware(RateLimitMiddleware(s.Limiter, mux))
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "rate_limited", s.Limiter != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware allows any origin. The API is read-only and carries no
// credentials.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observation returns the latest observation, answering 503 before the
// first tick commits.
func (s *Server) observation(w http.ResponseWriter) *Observation {
	o := s.latest.Load()
	if o == nil {
		http.Error(w, "no tick committed yet", http.StatusServiceUnavailable)
	}
	return o
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	o := s.observation(w)
	if o == nil {
		return
	}
	status := map[string]any{
		"run_id":     o.RunID,
		"tick":       o.Report.Tick,
		"season":     o.Report.Season.String(),
		"population": o.Report.Population,
		"births":     o.Report.Births,
		"deaths":     o.Report.Deaths,
		"migrants":   o.Report.Migrants,
		"at":         o.At,
	}
	if o.Stats != nil {
		status["herbivores"] = o.Stats.Herbivores.Count
		status["carnivores"] = o.Stats.Carnivores.Count
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	o := s.observation(w)
	if o == nil {
		return
	}
	if o.Stats == nil {
		http.Error(w, "no statistics yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, o.Stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	o := s.observation(w)
	if o == nil {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := o.Events
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := events[start:]
	if out == nil {
		out = []engine.Event{}
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
