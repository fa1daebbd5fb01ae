package api

import (
	"net/http"

	"github.com/tapcard/internal/service"
)

// handleGetCurrentUser handles GET /api/auth/user - the caller's identity
// record
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// handleUpsertUser handles POST /api/auth/user - create or refresh the
// caller's identity record on login
func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var input service.UpsertUserInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusInternalServerError, "Invalid request body")
		return
	}

	user, err := s.userService.Upsert(r.Context(), userID, &input)
	if err != nil {
		s.logger.WithError(err).Error("failed to upsert user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
