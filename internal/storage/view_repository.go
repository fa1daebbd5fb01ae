package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// ViewRepository handles the append-only profile view event store in
// ClickHouse. Rows are never updated or deleted; all stats are COUNT
// queries over the raw events.
type ViewRepository struct {
	db *ClickHouseDB
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *ClickHouseDB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Insert appends a profile view event. Profile existence is not verified
// here; callers that want the check do it themselves.
func (r *ViewRepository) Insert(ctx context.Context, view *models.ProfileView) error {
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}

	query := `
		INSERT INTO profile_views (
			id, profile_id, viewer_user_id, viewer_location, viewer_device,
			view_duration, ip_address, user_agent, viewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := r.db.Conn().Exec(ctx, query,
		view.ID,
		view.ProfileID,
		view.ViewerUserID,
		view.ViewerLocation,
		view.ViewerDevice,
		view.ViewDuration,
		view.IPAddress,
		view.UserAgent,
		view.ViewedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert profile view: %w", err)
	}

	return nil
}

// ListFor returns all view events for a profile, most recent first.
func (r *ViewRepository) ListFor(ctx context.Context, profileID int32) ([]*models.ProfileView, error) {
	query := `
		SELECT id, profile_id, viewer_user_id, viewer_location, viewer_device,
			view_duration, ip_address, user_agent, viewed_at
		FROM profile_views
		WHERE profile_id = ?
		ORDER BY viewed_at DESC
	`

	rows, err := r.db.Conn().Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile views: %w", err)
	}
	defer rows.Close()

	var views []*models.ProfileView
	for rows.Next() {
		var view models.ProfileView
		err := rows.Scan(
			&view.ID,
			&view.ProfileID,
			&view.ViewerUserID,
			&view.ViewerLocation,
			&view.ViewerDevice,
			&view.ViewDuration,
			&view.IPAddress,
			&view.UserAgent,
			&view.ViewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile view: %w", err)
		}
		views = append(views, &view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile views: %w", err)
	}

	return views, nil
}

// StatsFor computes the windowed view counts for a profile. Three
// independent counts; the windows nest, so total >= week >= today holds for
// any event history.
func (r *ViewRepository) StatsFor(ctx context.Context, profileID int32) (*types.ViewStats, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &types.ViewStats{}

	total, err := r.countSince(ctx, profileID, nil)
	if err != nil {
		return nil, err
	}
	stats.TotalViews = total

	today, err := r.countSince(ctx, profileID, &startOfDay)
	if err != nil {
		return nil, err
	}
	stats.TodayViews = today

	week, err := r.countSince(ctx, profileID, &weekAgo)
	if err != nil {
		return nil, err
	}
	stats.WeekViews = week

	return stats, nil
}

// ViewerCounts returns per-viewer view counts for a profile, restricted to
// authenticated viewers. Used for the profession breakdown.
func (r *ViewRepository) ViewerCounts(ctx context.Context, profileID int32) (map[string]int64, error) {
	query := `
		SELECT viewer_user_id, COUNT(*) AS views
		FROM profile_views
		WHERE profile_id = ? AND viewer_user_id IS NOT NULL
		GROUP BY viewer_user_id
	`

	rows, err := r.db.Conn().Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to count viewers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var viewerID *string
		var views uint64
		if err := rows.Scan(&viewerID, &views); err != nil {
			return nil, fmt.Errorf("failed to scan viewer count: %w", err)
		}
		if viewerID != nil {
			counts[*viewerID] = int64(views)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating viewer counts: %w", err)
	}

	return counts, nil
}

func (r *ViewRepository) countSince(ctx context.Context, profileID int32, since *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM profile_views WHERE profile_id = ?`
	args := []any{profileID}

	if since != nil {
		query += " AND viewed_at >= ?"
		args = append(args, *since)
	}

	var count uint64
	row := r.db.Conn().QueryRow(ctx, query, args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profile views: %w", err)
	}

	return int64(count), nil
}
