package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/analysis"
	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"
)

type turnPayload struct {
	SessionID      string `json:"session_id,omitempty"`
	UserID         string `json:"user_id"`
	Input          string `json:"input"`
	PreferredAgent string `json:"preferred_agent,omitempty"`
}

func (s *Server) handleTurn(channel session.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload turnPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, errors.InvalidInput("malformed request body"))
			return
		}

		result, err := s.intake.HandleTurn(r.Context(), service.TurnRequest{
			SessionID: payload.SessionID,
			UserID:    payload.UserID,
			Channel:   channel,
			Input:     payload.Input,
			Preferred: agent.Type(payload.PreferredAgent),
		})
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.intake.EndSession(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"active_sessions": s.intake.ActiveSessions(),
	}
	if s.models != nil {
		stats["models"] = s.models.ListModels()
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.models != nil {
		if err := s.models.Health(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "reason": err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRemovalDefense(w http.ResponseWriter, r *http.Request) {
	var facts analysis.CaseFacts
	if err := json.NewDecoder(r.Body).Decode(&facts); err != nil {
		respondError(w, errors.InvalidInput("malformed request body"))
		return
	}
	respondJSON(w, http.StatusOK, s.intake.AnalyzeRemovalDefenseCase(r.Context(), facts))
}

func (s *Server) handleBondMotion(w http.ResponseWriter, r *http.Request) {
	var facts analysis.BondFacts
	if err := json.NewDecoder(r.Body).Decode(&facts); err != nil {
		respondError(w, errors.InvalidInput("malformed request body"))
		return
	}
	respondJSON(w, http.StatusOK, s.intake.AnalyzeBondMotion(r.Context(), facts))
}

func (s *Server) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		respondError(w, errors.NotFound("knowledge search is not enabled"))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, errors.InvalidInput("query parameter q is required"))
		return
	}

	entries, err := s.index.Search(r.Context(), query, s.searchTopK)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"query": query, "results": entries})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsCategory(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.IsCategory(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.IsCategory(err, errors.ErrExternalService), errors.IsCategory(err, errors.ErrTransient):
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
