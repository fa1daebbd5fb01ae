package service

import (
	"context"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// UserService owns user identity records. Users are created on first
// authentication and upserted on subsequent logins.
type UserService struct {
	users  UserRepository
	logger *logging.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, logger *logging.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// UpsertUserInput carries the identity fields supplied by the auth
// collaborator on login.
type UpsertUserInput struct {
	Email           *string `json:"email,omitempty"`
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

// Upsert creates or refreshes the user record for the given identity.
func (s *UserService) Upsert(ctx context.Context, userID string, input *UpsertUserInput) (*models.User, error) {
	user := &models.User{
		ID:              userID,
		Email:           input.Email,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		ProfileImageURL: input.ProfileImageURL,
	}

	result, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", userID).Debug("user upserted")
	return result, nil
}

// Get returns the user record for the caller identity.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &types.ServiceError{
			Code:    "USER_NOT_FOUND",
			Message: "user not found",
		}
	}
	return user, nil
}
