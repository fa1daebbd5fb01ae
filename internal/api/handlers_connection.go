package api

import (
	"net/http"

	"github.com/tapcard/internal/service"
)

// handleListConnections handles GET /api/connections - the caller's
// outgoing connections with target user and profile attached
func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	connections, err := s.connectionService.ListFor(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list connections")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, connections)
}

// handleCreateConnection handles POST /api/connections
func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var input service.CreateConnectionInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusInternalServerError, "Invalid request body")
		return
	}

	connection, err := s.connectionService.Create(r.Context(), userID, &input)
	if err != nil {
		s.logger.WithError(err).Error("failed to create connection")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, connection)
}

// handleToggleFavorite handles PATCH /api/connections/:id/favorite. The
// response is {success:true} whether or not the caller owns the connection;
// an unowned id simply changes nothing.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	connectionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.connectionService.ToggleFavorite(r.Context(), userID, connectionID); err != nil {
		s.logger.WithError(err).Error("failed to toggle favorite")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
