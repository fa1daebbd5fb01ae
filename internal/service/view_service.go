package service

import (
	"context"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
)

// ViewService records and reads profile view events. Views are append-only;
// recording does not verify that the profile exists, so a view against a
// deleted or never-created id is stored like any other.
type ViewService struct {
	views  ViewRepository
	logger *logging.Logger
}

// NewViewService creates a new view service
func NewViewService(views ViewRepository, logger *logging.Logger) *ViewService {
	return &ViewService{
		views:  views,
		logger: logger,
	}
}

// RecordViewInput carries the viewer metadata attached to a view event.
// Every field except the profile id is optional.
type RecordViewInput struct {
	ViewerUserID   *string `json:"viewerUserId,omitempty"`
	ViewerLocation *string `json:"viewerLocation,omitempty"`
	ViewerDevice   *string `json:"viewerDevice,omitempty"`
	ViewDuration   *int32  `json:"viewDuration,omitempty"`
	IPAddress      *string `json:"ipAddress,omitempty"`
	UserAgent      *string `json:"userAgent,omitempty"`
}

// Record appends a view event for a profile.
func (s *ViewService) Record(ctx context.Context, profileID int32, input *RecordViewInput) (*models.ProfileView, error) {
	view := &models.ProfileView{
		ProfileID:      profileID,
		ViewerUserID:   input.ViewerUserID,
		ViewerLocation: input.ViewerLocation,
		ViewerDevice:   input.ViewerDevice,
		ViewDuration:   input.ViewDuration,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
	}

	if err := s.views.Insert(ctx, view); err != nil {
		return nil, err
	}

	s.logger.WithField("profile_id", profileID).Debug("profile view recorded")
	return view, nil
}

// ListFor returns the raw view events for a profile, most recent first.
func (s *ViewService) ListFor(ctx context.Context, profileID int32) ([]*models.ProfileView, error) {
	return s.views.ListFor(ctx, profileID)
}
