package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// ConnectionRepository handles connection edge persistence
type ConnectionRepository struct {
	db *PostgresDB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *PostgresDB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create inserts a connection edge and fills in the generated id. There is
// no uniqueness constraint on (from, to) pairs; repeat scans insert repeat
// edges.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	conn.ConnectedAt = time.Now()

	query := `
		INSERT INTO connections (from_user_id, to_user_id, to_profile_id, is_favorite, scan_method, notes, connected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.Pool().QueryRow(ctx, query,
		conn.FromUserID,
		conn.ToUserID,
		conn.ToProfileID,
		conn.IsFavorite,
		conn.ScanMethod,
		conn.Notes,
		conn.ConnectedAt,
	).Scan(&conn.ID)

	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}

	return nil
}

// ListFor returns a user's outgoing connections joined with the target user
// and, when set, the target profile, most recent first.
func (r *ConnectionRepository) ListFor(ctx context.Context, userID string) ([]*models.ConnectionWithTarget, error) {
	query := `
		SELECT
			c.id, c.from_user_id, c.to_user_id, c.to_profile_id, c.is_favorite,
			c.scan_method, c.notes, c.connected_at,
			u.id, u.email, u.first_name, u.last_name, u.profile_image_url, u.created_at, u.updated_at,
			p.id, p.user_id, p.name, p.profession, p.company, p.bio, p.phone, p.website,
			p.social_links, p.is_public, p.nfc_tag_id, p.qr_code_data, p.created_at, p.updated_at
		FROM connections c
		JOIN users u ON u.id = c.to_user_id
		LEFT JOIN profiles p ON p.id = c.to_profile_id
		WHERE c.from_user_id = $1
		ORDER BY c.connected_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var result []*models.ConnectionWithTarget
	for rows.Next() {
		var row models.ConnectionWithTarget
		var profile nullableProfile

		err := rows.Scan(
			&row.ID,
			&row.FromUserID,
			&row.ToUserID,
			&row.ToProfileID,
			&row.IsFavorite,
			&row.ScanMethod,
			&row.Notes,
			&row.ConnectedAt,
			&row.ToUser.ID,
			&row.ToUser.Email,
			&row.ToUser.FirstName,
			&row.ToUser.LastName,
			&row.ToUser.ProfileImageURL,
			&row.ToUser.CreatedAt,
			&row.ToUser.UpdatedAt,
			&profile.ID,
			&profile.UserID,
			&profile.Name,
			&profile.Profession,
			&profile.Company,
			&profile.Bio,
			&profile.Phone,
			&profile.Website,
			&profile.SocialLinksJSON,
			&profile.IsPublic,
			&profile.NFCTagID,
			&profile.QRCodeData,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}

		toProfile, err := profile.toModel()
		if err != nil {
			return nil, err
		}
		row.ToProfile = toProfile

		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return result, nil
}

// ToggleFavorite flips is_favorite on a connection, but only when the
// connection belongs to userID. A missing or unowned connection is a silent
// no-op.
func (r *ConnectionRepository) ToggleFavorite(ctx context.Context, userID string, connectionID int32) error {
	query := `
		UPDATE connections
		SET is_favorite = NOT is_favorite
		WHERE id = $1 AND from_user_id = $2
	`

	_, err := r.db.Pool().Exec(ctx, query, connectionID, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return nil
}

// GetByID retrieves a connection by id. Returns nil without error when
// absent.
func (r *ConnectionRepository) GetByID(ctx context.Context, id int32) (*models.Connection, error) {
	query := `
		SELECT id, from_user_id, to_user_id, to_profile_id, is_favorite, scan_method, notes, connected_at
		FROM connections
		WHERE id = $1
	`

	var conn models.Connection
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&conn.ID,
		&conn.FromUserID,
		&conn.ToUserID,
		&conn.ToProfileID,
		&conn.IsFavorite,
		&conn.ScanMethod,
		&conn.Notes,
		&conn.ConnectedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return &conn, nil
}

// StatsFor computes the aggregate counts over a user's outgoing edges. Three
// independent counts, recomputed on every call; no counter state is kept.
func (r *ConnectionRepository) StatsFor(ctx context.Context, userID string) (*types.ConnectionStats, error) {
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	stats := &types.ConnectionStats{}

	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM connections WHERE from_user_id = $1`,
		userID,
	).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count connections: %w", err)
	}

	err = r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM connections WHERE from_user_id = $1 AND connected_at >= $2`,
		userID, weekAgo,
	).Scan(&stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to count week connections: %w", err)
	}

	err = r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM connections WHERE from_user_id = $1 AND is_favorite = TRUE`,
		userID,
	).Scan(&stats.Favorites)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}

	return stats, nil
}
