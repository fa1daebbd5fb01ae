package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tapcard/internal/models"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullableProfile scans the profile side of a LEFT JOIN, where every column
// may be NULL when no profile row matched.
type nullableProfile struct {
	ID              *int32
	UserID          *string
	Name            *string
	Profession      *string
	Company         *string
	Bio             *string
	Phone           *string
	Website         *string
	SocialLinksJSON []byte
	IsPublic        *bool
	NFCTagID        *string
	QRCodeData      *string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

// toModel converts the scanned columns into a Profile, or nil when the join
// produced no row.
func (n *nullableProfile) toModel() (*models.Profile, error) {
	if n.ID == nil {
		return nil, nil
	}

	profile := &models.Profile{
		ID:         *n.ID,
		UserID:     derefString(n.UserID),
		Name:       derefString(n.Name),
		Profession: n.Profession,
		Company:    n.Company,
		Bio:        n.Bio,
		Phone:      n.Phone,
		Website:    n.Website,
		NFCTagID:   n.NFCTagID,
		QRCodeData: n.QRCodeData,
	}

	if n.IsPublic != nil {
		profile.IsPublic = *n.IsPublic
	}
	if n.CreatedAt != nil {
		profile.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		profile.UpdatedAt = *n.UpdatedAt
	}

	if len(n.SocialLinksJSON) > 0 {
		var links models.SocialLinks
		if err := json.Unmarshal(n.SocialLinksJSON, &links); err != nil {
			return nil, fmt.Errorf("failed to unmarshal social links: %w", err)
		}
		profile.SocialLinks = links
	}

	return profile, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
