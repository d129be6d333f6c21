package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bazaar-flipper/internal/bazaar"
	"bazaar-flipper/internal/config"
	"bazaar-flipper/internal/db"
	"bazaar-flipper/internal/engine"
	"bazaar-flipper/internal/logger"
	"bazaar-flipper/internal/observability"
)

// FlipProvider serves the ranked flip list for a tax rate.
type FlipProvider interface {
	Flips(ctx context.Context, taxPercent float64) ([]engine.FlipRecord, error)
	Mode() string
}

// PreferenceStore persists the client's filter/sort/tax selection and the
// refresh history.
type PreferenceStore interface {
	LoadFilterState() engine.FilterState
	SaveFilterState(engine.FilterState) error
	RefreshHistory(limit int) []db.RefreshEntry
	ClearRefreshHistory() error
}

// Server is the HTTP API server that connects the flip service and the
// preference store.
type Server struct {
	cfg     *config.Config
	flips   FlipProvider
	store   PreferenceStore
	version string
}

// NewServer creates a Server with the given config, flip service, and store.
func NewServer(cfg *config.Config, flips FlipProvider, store PreferenceStore, version string) *Server {
	return &Server{cfg: cfg, flips: flips, store: store, version: version}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flips", s.handleFlips)
	mux.HandleFunc("POST /api/flips/query", s.handleFlipsQuery)
	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handlePutPreferences)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/history/clear", s.handleHistoryClear)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())
	return corsMiddleware(mux)
}

type flipsResponse struct {
	Success bool                `json:"success"`
	Data    []engine.FlipRecord `json:"data"`
}

// handleFlips serves the ranked list, optionally at a caller-chosen tax rate
// (fractional percent, default from config).
func (s *Server) handleFlips(w http.ResponseWriter, r *http.Request) {
	tax := s.cfg.TaxRatePercent
	if raw := r.URL.Query().Get("tax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tax parameter")
			return
		}
		tax = engine.ClampTax(v)
	}

	recs, err := s.flips.Flips(r.Context(), tax)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, flipsResponse{Success: true, Data: nonNil(recs)})
}

// handleFlipsQuery applies a full FilterState (live tax recompute, blacklist,
// range filters, sort) over the cached snapshot.
func (s *Server) handleFlipsQuery(w http.ResponseWriter, r *http.Request) {
	var state engine.FilterState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter state")
		return
	}

	// The base list is derived at the default tax; Apply re-derives margin
	// and coins/hour from the stored untaxed inputs under the live tax.
	recs, err := s.flips.Flips(r.Context(), s.cfg.TaxRatePercent)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, flipsResponse{Success: true, Data: nonNil(engine.Apply(recs, state))})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.LoadFilterState())
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var state engine.FilterState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences")
		return
	}
	if err := s.store.SaveFilterState(state); err != nil {
		logger.Error("API", fmt.Sprintf("Save preferences: %v", err))
		writeError(w, http.StatusInternalServerError, "could not persist preferences")
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries := s.store.RefreshHistory(limit)
	if entries == nil {
		entries = []db.RefreshEntry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearRefreshHistory(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"ready":      true,
		"version":    s.version,
		"source":     s.flips.Mode(),
		"defaultTax": s.cfg.TaxRatePercent,
	})
}

// writeFetchError maps the SourceUnavailable class to a server-error status
// with the structured failure envelope.
func (s *Server) writeFetchError(w http.ResponseWriter, err error) {
	logger.Error("API", fmt.Sprintf("Flip fetch failed: %v", err))
	code := http.StatusInternalServerError
	if errors.Is(err, bazaar.ErrUnavailable) {
		code = http.StatusBadGateway
	}
	writeError(w, code, err.Error())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": msg})
}

func nonNil(recs []engine.FlipRecord) []engine.FlipRecord {
	if recs == nil {
		return []engine.FlipRecord{}
	}
	return recs
}
