package api

import (
	"net/http"
	"time"
)

// monitorResponse is the API view of a known monitor.
type monitorResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Brightness *int   `json:"brightness"`
}

// handleListMonitors returns all currently known monitors.
func (s *Server) handleListMonitors(w http.ResponseWriter, _ *http.Request) {
	ids := s.monitors.Monitors()
	out := make([]monitorResponse, 0, len(ids))
	for _, id := range ids {
		m := monitorResponse{ID: id}
		if name, ok := s.monitors.Name(id); ok {
			m.Name = name
		}
		if level, ok := s.monitors.Brightness(id); ok {
			m.Brightness = &level
		}
		out = append(out, m)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"monitors": out,
		"count":    len(out),
	})
}

// handleStatus reports daemon status: runner state, monitor count,
// rule count and the managed bridge helper, when present.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"runner_state":   s.runner.State().String(),
		"monitors":       len(s.monitors.Monitors()),
		"rules":          len(s.store.Rules()),
		"sun":            s.store.SunriseSunset(),
	}
	if s.supervisor != nil {
		status["bridge"] = s.supervisor.Stats()
	}
	writeJSON(w, http.StatusOK, status)
}
