package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/types"
)

// DashboardStats combines the caller's connection and view aggregates into
// one dashboard response.
type DashboardStats struct {
	Connections *types.ConnectionStats `json:"connections"`
	Views       *types.ViewStats       `json:"views"`
}

// AnalyticsService composes read-side aggregates over views and
// connections. Every call re-aggregates from source rows; nothing here is
// cached or materialized, so dashboards always see current counts.
type AnalyticsService struct {
	profiles    ProfileRepository
	connections ConnectionRepository
	views       ViewRepository
	logger      *logging.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(profiles ProfileRepository, connections ConnectionRepository, views ViewRepository, logger *logging.Logger) *AnalyticsService {
	return &AnalyticsService{
		profiles:    profiles,
		connections: connections,
		views:       views,
		logger:      logger,
	}
}

// Stats returns the dashboard aggregates for a user: view stats over the
// user's own profile plus connection stats over the user's outgoing edges.
// Fails with PROFILE_NOT_FOUND when the user has no profile yet.
func (s *AnalyticsService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for stats: %w", err)
	}
	if profile == nil {
		return nil, &types.ServiceError{
			Code:    "PROFILE_NOT_FOUND",
			Message: "user has no profile",
		}
	}

	connStats, err := s.connections.StatsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	viewStats, err := s.views.StatsFor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Connections: connStats,
		Views:       viewStats,
	}, nil
}

// ProfessionBreakdown buckets a profile's authenticated viewers by their own
// profession. Viewer counts come from the event store; professions are
// resolved against the profile store in one batch. Viewers without a
// profession land in the "Other" bucket. Buckets are ordered by count
// descending, ties broken by name.
func (s *AnalyticsService) ProfessionBreakdown(ctx context.Context, profileID int32) ([]types.ProfessionCount, error) {
	viewerCounts, err := s.views.ViewerCounts(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(viewerCounts) == 0 {
		return []types.ProfessionCount{}, nil
	}

	viewerIDs := make([]string, 0, len(viewerCounts))
	for id := range viewerCounts {
		viewerIDs = append(viewerIDs, id)
	}

	professions, err := s.profiles.ProfessionsFor(ctx, viewerIDs)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]int64)
	for viewerID, count := range viewerCounts {
		profession, ok := professions[viewerID]
		if !ok {
			profession = "Other"
		}
		buckets[profession] += count
	}

	result := make([]types.ProfessionCount, 0, len(buckets))
	for profession, count := range buckets {
		result = append(result, types.ProfessionCount{
			Profession: profession,
			Count:      count,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Profession < result[j].Profession
	})

	return result, nil
}
