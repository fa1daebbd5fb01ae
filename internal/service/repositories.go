package service

import (
	"context"

	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// Repository interfaces for dependency injection

// ProfileRepository is the profile store surface the services depend on.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	GetByID(ctx context.Context, id int32) (*models.Profile, error)
	GetByNFCTag(ctx context.Context, tagID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error)
	ProfessionsFor(ctx context.Context, userIDs []string) (map[string]string, error)
}

// UserRepository is the user store surface the services depend on.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ConnectionRepository is the connection store surface the services depend on.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) error
	ListFor(ctx context.Context, userID string) ([]*models.ConnectionWithTarget, error)
	ToggleFavorite(ctx context.Context, userID string, connectionID int32) error
	StatsFor(ctx context.Context, userID string) (*types.ConnectionStats, error)
}

// ViewRepository is the view event store surface the services depend on.
type ViewRepository interface {
	Insert(ctx context.Context, view *models.ProfileView) error
	ListFor(ctx context.Context, profileID int32) ([]*models.ProfileView, error)
	StatsFor(ctx context.Context, profileID int32) (*types.ViewStats, error)
	ViewerCounts(ctx context.Context, profileID int32) (map[string]int64, error)
}
