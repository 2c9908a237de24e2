// Package api provides the HTTP API for observing the presentation loop.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/norddeich/castaway/internal/catalog"
)

// InstanceView is the JSON shape of the active event instance.
type InstanceView struct {
	EventID        string  `json:"event_id"`
	InstanceID     string  `json:"instance_id"`
	Pool           string  `json:"pool"`
	PhaseIndex     int     `json:"phase_index"`
	PhaseType      string  `json:"phase_type"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Status is one consistent observation of the loop.
type Status struct {
	Tick           uint64        `json:"tick"`
	SessionSeconds float64       `json:"session_seconds"`
	TimeOfDay      string        `json:"time_of_day"`
	Weather        string        `json:"weather"`
	CloudStrength  float64       `json:"cloud_strength"`
	Speed          float64       `json:"speed"`
	Instance       *InstanceView `json:"instance"`
}

// StatusSource supplies per-tick snapshots. Implementations must be safe
// for concurrent readers; the daemon updates a guarded copy each tick.
type StatusSource interface {
	Status() Status
}

// SpeedControl adjusts loop pacing from the control plane.
type SpeedControl interface {
	SetSpeed(v float64)
	Speed() float64
}

// Server serves loop state over HTTP.
type Server struct {
	Source      StatusSource
	Catalog     *catalog.Catalog
	Diagnostics []catalog.Diagnostic
	Control     SpeedControl
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Handler builds the route table. Exposed separately from Start so tests
// can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/instance", s.handleInstance)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/diagnostics", s.handleDiagnostics)

	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Source.Status())
}

// handleInstance returns just the active instance, or null when idle, for
// renderers that poll at frame rate.
func (s *Server) handleInstance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Source.Status().Instance)
}

type catalogEntryView struct {
	ID         string              `json:"id"`
	Pool       string              `json:"pool"`
	Tier       int                 `json:"tier,omitempty"`
	Weight     float64             `json:"weight"`
	Cooldown   float64             `json:"cooldown"`
	MinRuntime float64             `json:"min_runtime"`
	Duration   float64             `json:"duration"`
	Phases     int                 `json:"phases"`
	Conditions map[string][]string `json:"conditions,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defs := s.Catalog.Definitions()
	entries := make([]catalogEntryView, 0, len(defs))
	for _, def := range defs {
		view := catalogEntryView{
			ID:         def.ID,
			Pool:       string(def.Pool),
			Tier:       def.Tier,
			Weight:     def.Weight,
			Cooldown:   def.Cooldown,
			MinRuntime: def.MinRuntime,
			Duration:   def.Duration(),
			Phases:     len(def.Phases),
		}
		if !def.Conditions.Empty() {
			view.Conditions = map[string][]string{}
			if len(def.Conditions.TimeOfDay) > 0 {
				view.Conditions["time_of_day"] = def.Conditions.TimeOfDay
			}
			if len(def.Conditions.Weather) > 0 {
				view.Conditions["weather"] = def.Conditions.Weather
			}
		}
		entries = append(entries, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":               entries,
		"rare_min_interval":    s.Catalog.Params.RareMinInterval,
		"rare_retry_interval":  s.Catalog.Params.RareRetryInterval,
		"ambient_min_interval": s.Catalog.Params.AmbientMinInterval,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type diagView struct {
		Index  int    `json:"index"`
		ID     string `json:"id,omitempty"`
		Reason string `json:"reason"`
	}
	views := make([]diagView, 0, len(s.Diagnostics))
	for _, d := range s.Diagnostics {
		views = append(views, diagView{Index: d.Index, ID: d.ID, Reason: d.Reason})
	}
	writeJSON(w, http.StatusOK, map[string]any{"skipped": views})
}

// adminOnly gates control endpoints behind the bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "control endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed out of range", http.StatusBadRequest)
		return
	}

	s.Control.SetSpeed(req.Speed)
	slog.Info("loop speed changed", "speed", req.Speed)
	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Control.Speed()})
}
