package models

import "time"

// ProfileView is one recorded visit to a profile's public page. Rows are
// append-only; nothing mutates a view after it is written.
type ProfileView struct {
	ID             string    `json:"id"`
	ProfileID      int32     `json:"profileId"`
	ViewerUserID   *string   `json:"viewerUserId,omitempty"`
	ViewerLocation *string   `json:"viewerLocation,omitempty"`
	ViewerDevice   *string   `json:"viewerDevice,omitempty"`
	ViewDuration   *int32    `json:"viewDuration,omitempty"` // seconds
	IPAddress      *string   `json:"ipAddress,omitempty"`
	UserAgent      *string   `json:"userAgent,omitempty"`
	ViewedAt       time.Time `json:"viewedAt"`
}
