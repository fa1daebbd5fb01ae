package api

import (
	"net/http"
)

// handleAnalyticsStats handles GET /api/analytics/stats - the caller's
// dashboard aggregates
func (s *Server) handleAnalyticsStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	stats, err := s.analyticsService.Stats(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to compute analytics stats")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleAnalyticsViews handles GET /api/analytics/views/:profileId - raw
// view events for a profile, most recent first
func (s *Server) handleAnalyticsViews(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathID(w, r, "profileId")
	if !ok {
		return
	}

	views, err := s.viewService.ListFor(r.Context(), profileID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list profile views")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, views)
}

// handleAnalyticsProfessions handles GET /api/analytics/professions/:profileId
func (s *Server) handleAnalyticsProfessions(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathID(w, r, "profileId")
	if !ok {
		return
	}

	breakdown, err := s.analyticsService.ProfessionBreakdown(r.Context(), profileID)
	if err != nil {
		s.logger.WithError(err).Error("failed to compute profession breakdown")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, breakdown)
}
