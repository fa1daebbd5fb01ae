package service

import (
	"context"
	"fmt"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// ConnectionService records and reads "I met this person" edges. Edges are
// directed and deliberately not deduplicated; scanning the same card twice
// records two edges.
type ConnectionService struct {
	connections ConnectionRepository
	users       UserRepository
	profiles    ProfileRepository
	logger      *logging.Logger
}

// NewConnectionService creates a new connection service
func NewConnectionService(connections ConnectionRepository, users UserRepository, profiles ProfileRepository, logger *logging.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		profiles:    profiles,
		logger:      logger,
	}
}

// CreateConnectionInput carries the fields of a new connection edge. The
// from side is the caller identity and is never taken from the body.
type CreateConnectionInput struct {
	ToUserID    string           `json:"toUserId"`
	ToProfileID *int32           `json:"toProfileId,omitempty"`
	ScanMethod  types.ScanMethod `json:"scanMethod"`
	Notes       *string          `json:"notes,omitempty"`
}

// Create records a connection edge from the caller to the target user. The
// target user must exist and, when a target profile id is supplied, so must
// the profile. Self-connections are rejected.
func (s *ConnectionService) Create(ctx context.Context, fromUserID string, input *CreateConnectionInput) (*models.Connection, error) {
	if input.ToUserID == "" {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "toUserId is required",
		}
	}
	if input.ToUserID == fromUserID {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "cannot create a connection to yourself",
		}
	}
	if !types.ValidScanMethod(input.ScanMethod) {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("invalid scan method: %s", input.ScanMethod),
			Details: map[string]interface{}{
				"scanMethod": string(input.ScanMethod),
			},
		}
	}

	exists, err := s.users.Exists(ctx, input.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check target user: %w", err)
	}
	if !exists {
		return nil, &types.ServiceError{
			Code:    "USER_NOT_FOUND",
			Message: "target user does not exist",
		}
	}

	if input.ToProfileID != nil {
		profile, err := s.profiles.GetByID(ctx, *input.ToProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to check target profile: %w", err)
		}
		if profile == nil {
			return nil, &types.ServiceError{
				Code:    "PROFILE_NOT_FOUND",
				Message: "target profile does not exist",
			}
		}
	}

	conn := &models.Connection{
		FromUserID:  fromUserID,
		ToUserID:    input.ToUserID,
		ToProfileID: input.ToProfileID,
		ScanMethod:  input.ScanMethod,
		Notes:       input.Notes,
	}

	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"from_user_id": fromUserID,
		"to_user_id":   input.ToUserID,
		"scan_method":  string(input.ScanMethod),
	}).Info("connection recorded")

	return conn, nil
}

// ListFor returns the caller's outgoing connections joined with the target
// user and profile, most recent first.
func (s *ConnectionService) ListFor(ctx context.Context, userID string) ([]*models.ConnectionWithTarget, error) {
	return s.connections.ListFor(ctx, userID)
}

// ToggleFavorite flips the favorite flag on a connection the caller owns.
// A missing or unowned connection id is a silent no-op; callers cannot tell
// the difference from success.
func (s *ConnectionService) ToggleFavorite(ctx context.Context, userID string, connectionID int32) error {
	return s.connections.ToggleFavorite(ctx, userID, connectionID)
}

// StatsFor returns the aggregate counts over the caller's outgoing edges.
func (s *ConnectionService) StatsFor(ctx context.Context, userID string) (*types.ConnectionStats, error) {
	return s.connections.StatsFor(ctx, userID)
}
