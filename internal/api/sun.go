package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lumatech/luxd/internal/schedule"
)

// handleGetSunConfig returns the sunrise/sunset configuration.
func (s *Server) handleGetSunConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.SunriseSunset())
}

// handleSetSunConfig replaces the sunrise/sunset configuration and
// persists the schedule.
func (s *Server) handleSetSunConfig(w http.ResponseWriter, r *http.Request) {
	var sun schedule.SunConfig
	if err := json.NewDecoder(r.Body).Decode(&sun); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid sun configuration: %v", err))
		return
	}

	if sun.Latitude < -90 || sun.Latitude > 90 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation,
			"latitude must be between -90 and 90")
		return
	}
	if sun.Longitude < -180 || sun.Longitude > 180 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation,
			"longitude must be between -180 and 180")
		return
	}
	if sun.SunriseBrightness < schedule.MinBrightness || sun.SunriseBrightness > schedule.MaxBrightness ||
		sun.SunsetBrightness < schedule.MinBrightness || sun.SunsetBrightness > schedule.MaxBrightness {
		writeError(w, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("brightness must be between %d and %d",
				schedule.MinBrightness, schedule.MaxBrightness))
		return
	}

	s.store.SetSunriseSunset(sun)
	if err := s.runner.Save(r.Context()); err != nil {
		s.logger.Error("persisting schedule after sun update failed", "error", err)
		writeInternalError(w, "schedule could not be persisted")
		return
	}

	writeJSON(w, http.StatusOK, sun)
}
