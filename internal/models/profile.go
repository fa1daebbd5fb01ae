package models

import (
	"time"

	"github.com/tapcard/internal/types"
)

// SocialLinks maps a platform key to a handle or URL. Keys are restricted to
// the platforms in types.SocialPlatforms.
type SocialLinks map[types.SocialPlatform]string

// Profile is a user's business card. Exactly one profile exists per user;
// the nfc_tag_id, when set, is a globally unique lookup key.
type Profile struct {
	ID          int32       `json:"id"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Profession  *string     `json:"profession,omitempty"`
	Company     *string     `json:"company,omitempty"`
	Bio         *string     `json:"bio,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	Website     *string     `json:"website,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks,omitempty"`
	IsPublic    bool        `json:"isPublic"`
	NFCTagID    *string     `json:"nfcTagId,omitempty"`
	QRCodeData  *string     `json:"qrCodeData,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ProfilePatch carries the optional fields of a partial profile update.
// Nil pointers mean "leave unchanged".
type ProfilePatch struct {
	Name        *string     `json:"name,omitempty"`
	Profession  *string     `json:"profession,omitempty"`
	Company     *string     `json:"company,omitempty"`
	Bio         *string     `json:"bio,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	Website     *string     `json:"website,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks,omitempty"`
	IsPublic    *bool       `json:"isPublic,omitempty"`
	NFCTagID    *string     `json:"nfcTagId,omitempty"`
	QRCodeData  *string     `json:"qrCodeData,omitempty"`
}
