package api

import (
	"net/http"
)

// handleResolveScan handles POST /api/scan/resolve - map a raw NFC/QR token
// to the public profile it identifies. Resolution never records a view; the
// client follows up with the profile fetch, which does.
func (s *Server) handleResolveScan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusInternalServerError, "Invalid request body")
		return
	}

	profile, err := s.scanResolver.Resolve(r.Context(), body.Token)
	if err != nil {
		s.logger.WithField("token", body.Token).WithError(err).Info("scan token did not resolve")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
