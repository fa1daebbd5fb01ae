package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tapcard/internal/models"
)

// ProfileRepository handles profile data persistence
type ProfileRepository struct {
	db *PostgresDB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *PostgresDB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, name, profession, company, bio, phone, website,
	social_links, is_public, nfc_tag_id, qr_code_data, created_at, updated_at`

// Create inserts a profile and fills in the generated id.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	linksJSON, err := marshalSocialLinks(profile.SocialLinks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (user_id, name, profession, company, bio, phone, website,
			social_links, is_public, nfc_tag_id, qr_code_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err = r.db.Pool().QueryRow(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Profession,
		profile.Company,
		profile.Bio,
		profile.Phone,
		profile.Website,
		linksJSON,
		profile.IsPublic,
		profile.NFCTagID,
		profile.QRCodeData,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByUser retrieves the profile owned by a user. Returns nil without error
// when the user has no profile yet.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1`, profileColumns)
	return r.queryOne(ctx, query, userID)
}

// GetByID retrieves a profile by its numeric id. Returns nil without error
// when absent.
func (r *ProfileRepository) GetByID(ctx context.Context, id int32) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	return r.queryOne(ctx, query, id)
}

// GetByNFCTag retrieves a profile by its unique NFC tag id. Returns nil
// without error when no profile carries the tag.
func (r *ProfileRepository) GetByNFCTag(ctx context.Context, tagID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE nfc_tag_id = $1`, profileColumns)
	return r.queryOne(ctx, query, tagID)
}

// Update merges the non-nil patch fields into the user's profile and
// refreshes updated_at. Returns the updated profile, or nil without error
// when the user has no profile.
func (r *ProfileRepository) Update(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error) {
	setClauses := []string{"updated_at = $2"}
	args := []interface{}{userID, time.Now()}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Profession != nil {
		addSet("profession", *patch.Profession)
	}
	if patch.Company != nil {
		addSet("company", *patch.Company)
	}
	if patch.Bio != nil {
		addSet("bio", *patch.Bio)
	}
	if patch.Phone != nil {
		addSet("phone", *patch.Phone)
	}
	if patch.Website != nil {
		addSet("website", *patch.Website)
	}
	if patch.SocialLinks != nil {
		linksJSON, err := marshalSocialLinks(patch.SocialLinks)
		if err != nil {
			return nil, err
		}
		addSet("social_links", linksJSON)
	}
	if patch.IsPublic != nil {
		addSet("is_public", *patch.IsPublic)
	}
	if patch.NFCTagID != nil {
		addSet("nfc_tag_id", *patch.NFCTagID)
	}
	if patch.QRCodeData != nil {
		addSet("qr_code_data", *patch.QRCodeData)
	}

	query := fmt.Sprintf(
		`UPDATE profiles SET %s WHERE user_id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "),
		profileColumns,
	)

	profile, err := r.queryOneArgs(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// ProfessionsFor resolves professions for a set of user ids. Users without a
// profile or without a profession are simply absent from the result.
func (r *ProfileRepository) ProfessionsFor(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	query := `
		SELECT user_id, profession
		FROM profiles
		WHERE user_id = ANY($1) AND profession IS NOT NULL
	`

	rows, err := r.db.Pool().Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve professions: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string, len(userIDs))
	for rows.Next() {
		var userID, profession string
		if err := rows.Scan(&userID, &profession); err != nil {
			return nil, fmt.Errorf("failed to scan profession: %w", err)
		}
		result[userID] = profession
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating professions: %w", err)
	}

	return result, nil
}

func (r *ProfileRepository) queryOne(ctx context.Context, query string, arg interface{}) (*models.Profile, error) {
	profile, err := r.queryOneArgs(ctx, query, []interface{}{arg})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) queryOneArgs(ctx context.Context, query string, args []interface{}) (*models.Profile, error) {
	var profile models.Profile
	var linksJSON []byte

	err := r.db.Pool().QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Profession,
		&profile.Company,
		&profile.Bio,
		&profile.Phone,
		&profile.Website,
		&linksJSON,
		&profile.IsPublic,
		&profile.NFCTagID,
		&profile.QRCodeData,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if len(linksJSON) > 0 {
		var links models.SocialLinks
		if err := json.Unmarshal(linksJSON, &links); err != nil {
			return nil, fmt.Errorf("failed to unmarshal social links: %w", err)
		}
		profile.SocialLinks = links
	}

	return &profile, nil
}

func marshalSocialLinks(links models.SocialLinks) ([]byte, error) {
	if links == nil {
		return nil, nil
	}
	data, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal social links: %w", err)
	}
	return data, nil
}
