package models

import (
	"time"

	"github.com/tapcard/internal/types"
)

// Connection is a directed "I met this person" edge from one user to another.
// Pairs are not unique; scanning the same card twice creates two edges.
type Connection struct {
	ID          int32            `json:"id"`
	FromUserID  string           `json:"fromUserId"`
	ToUserID    string           `json:"toUserId"`
	ToProfileID *int32           `json:"toProfileId,omitempty"`
	IsFavorite  bool             `json:"isFavorite"`
	ScanMethod  types.ScanMethod `json:"scanMethod"`
	Notes       *string          `json:"notes,omitempty"`
	ConnectedAt time.Time        `json:"connectedAt"`
}

// ConnectionWithTarget is a connection joined with the target user and, when
// present, the target profile.
type ConnectionWithTarget struct {
	Connection
	ToUser    User     `json:"toUser"`
	ToProfile *Profile `json:"toProfile"`
}
