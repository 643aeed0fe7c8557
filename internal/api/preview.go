package api

import (
	"net/http"
	"strconv"
	"time"
)

// previewResponse reports the evaluation result for one monitor at a
// point in time.
type previewResponse struct {
	MonitorID  string `json:"monitor_id"`
	At         string `json:"at"`
	Brightness *int   `json:"brightness"`
	RuleID     string `json:"rule_id,omitempty"`
	RuleName   string `json:"rule_name,omitempty"`
}

// handlePreview evaluates the schedule for a monitor without driving
// hardware. The optional "at" query parameter (RFC 3339) defaults to
// the current time in the site timezone. A null brightness means no
// rule applies.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	monitorID := r.URL.Query().Get("monitor")
	if monitorID == "" {
		writeBadRequest(w, "monitor query parameter is required")
		return
	}

	at := time.Now().In(s.location)
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "at must be an RFC 3339 timestamp")
			return
		}
		at = parsed.In(s.location)
	}

	resp := previewResponse{
		MonitorID: monitorID,
		At:        at.Format(time.RFC3339),
	}

	if target, ok := s.evaluator.Evaluate(monitorID, at); ok {
		resp.Brightness = &target
		if rule, ok := s.evaluator.ActiveRule(monitorID, at); ok {
			resp.RuleID = rule.ID
			resp.RuleName = rule.Name
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleListEvents returns the most recent applied brightness changes.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []any{}, "count": 0})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeBadRequest(w, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	events, err := s.events.ListEvents(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing brightness events failed", "error", err)
		writeInternalError(w, "could not list events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
