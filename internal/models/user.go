package models

import "time"

// User represents an authenticated account. The identity key comes from the
// external auth provider and never changes after first sign-in.
type User struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email,omitempty"`
	FirstName       *string   `json:"firstName,omitempty"`
	LastName        *string   `json:"lastName,omitempty"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
