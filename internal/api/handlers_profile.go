package api

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tapcard/internal/service"
)

// handleGetOwnProfile handles GET /api/profile - the caller's own profile
func (s *Server) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	profile, err := s.profileService.GetByUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get own profile")
		respondServiceError(w, err)
		return
	}

	// A user without a profile gets null, not 404
	respondJSON(w, http.StatusOK, profile)
}

// handleSaveProfile handles POST /api/profile - create or update the
// caller's profile
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var input service.SaveProfileInput
	if err := parseJSONBody(r, &input); err != nil {
		// Parse failures surface as 500, matching the error contract
		respondError(w, http.StatusInternalServerError, "Invalid request body")
		return
	}

	profile, err := s.profileService.Save(r.Context(), userID, &input)
	if err != nil {
		s.logger.WithError(err).Error("failed to save profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// handleGetProfileByID handles GET /api/profile/:id - public card page
// lookup. A successful lookup records a view as a side effect.
func (s *Server) handleGetProfileByID(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	profile, err := s.profileService.GetPublicByID(r.Context(), profileID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get profile")
		respondServiceError(w, err)
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "Profile not found")
		return
	}

	s.recordView(r, profile.ID, nil)

	respondJSON(w, http.StatusOK, profile)
}

// handleGetProfileByNFCTag handles GET /api/profile/nfc/:tagId
func (s *Server) handleGetProfileByNFCTag(w http.ResponseWriter, r *http.Request) {
	tagID := mux.Vars(r)["tagId"]

	profile, err := s.profileService.GetPublicByNFCTag(r.Context(), tagID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get profile by NFC tag")
		respondServiceError(w, err)
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "Profile not found")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// handleRecordView handles POST /api/profile/:id/view - explicit view
// recording with viewer-supplied metadata
func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	profileID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		ViewerLocation *string `json:"viewerLocation,omitempty"`
		ViewerDevice   *string `json:"viewerDevice,omitempty"`
		ViewDuration   *int32  `json:"viewDuration,omitempty"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusInternalServerError, "Invalid request body")
		return
	}

	input := &service.RecordViewInput{
		ViewerLocation: body.ViewerLocation,
		ViewerDevice:   body.ViewerDevice,
		ViewDuration:   body.ViewDuration,
	}

	if err := s.recordView(r, profileID, input); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// recordView appends a view event enriched with request metadata. When
// input is nil the view carries request metadata only; the returned error
// is nil in that case since implicit views are best-effort.
func (s *Server) recordView(r *http.Request, profileID int32, input *service.RecordViewInput) error {
	implicit := input == nil
	if implicit {
		input = &service.RecordViewInput{}
	}

	if viewerID, ok := callerID(r); ok {
		input.ViewerUserID = &viewerID
	}
	if ip := clientIP(r); ip != "" {
		input.IPAddress = &ip
	}
	if ua := r.UserAgent(); ua != "" {
		input.UserAgent = &ua
	}

	_, err := s.viewService.Record(r.Context(), profileID, input)
	if err != nil {
		s.logger.WithError(err).Error("failed to record profile view")
		if implicit {
			return nil
		}
		return err
	}

	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// pathID parses a numeric path variable. The routes constrain these to
// digits, so a failure here means the id overflows int32.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		respondError(w, http.StatusNotFound, "Profile not found")
		return 0, false
	}
	return int32(id), true
}
