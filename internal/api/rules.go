package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumatech/luxd/internal/schedule"
)

// handleListRules returns all schedule rules.
func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	rules := s.store.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// handleGetRule returns a single rule by ID.
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, rule := range s.store.Rules() {
		if rule.ID == id {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}
	writeNotFound(w, fmt.Sprintf("rule %s not found", id))
}

// handleCreateRule adds a new rule and persists the schedule.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule schedule.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid rule: %v", err))
		return
	}
	if msg := validateRule(rule); msg != "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	stored := s.store.Add(rule)
	if err := s.runner.Save(r.Context()); err != nil {
		s.logger.Error("persisting schedule after create failed", "error", err)
		writeInternalError(w, "schedule could not be persisted")
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

// handleUpdateRule replaces an existing rule and persists the schedule.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rule schedule.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid rule: %v", err))
		return
	}
	rule.ID = id
	if msg := validateRule(rule); msg != "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	if !s.store.Update(rule) {
		writeNotFound(w, fmt.Sprintf("rule %s not found", id))
		return
	}
	if err := s.runner.Save(r.Context()); err != nil {
		s.logger.Error("persisting schedule after update failed", "error", err)
		writeInternalError(w, "schedule could not be persisted")
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// handleDeleteRule removes a rule and persists the schedule. Deleting
// an unknown rule succeeds; removal is idempotent.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.Remove(id)
	if err := s.runner.Save(r.Context()); err != nil {
		s.logger.Error("persisting schedule after delete failed", "error", err)
		writeInternalError(w, "schedule could not be persisted")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSaveSchedule forces a persistence pass. Mutating handlers
// already save; this exists for clients that batch edits through
// future bulk endpoints or want a durability barrier.
func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Save(r.Context()); err != nil {
		s.logger.Error("persisting schedule failed", "error", err)
		writeInternalError(w, "schedule could not be persisted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

// validateRule checks the fields callers control. Returns an empty
// string when the rule is acceptable.
func validateRule(rule schedule.Rule) string {
	if rule.Brightness < schedule.MinBrightness || rule.Brightness > schedule.MaxBrightness {
		return fmt.Sprintf("brightness must be between %d and %d",
			schedule.MinBrightness, schedule.MaxBrightness)
	}
	if rule.TransitionMinutes < 0 {
		return "transitionMinutes must not be negative"
	}
	if rule.MonitorID != nil && *rule.MonitorID == "" {
		return "monitorId must not be empty; omit it to target all monitors"
	}
	return ""
}
