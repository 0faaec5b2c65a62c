package model

import "time"

// Favorite marks a lawyer saved by a user, one row per pair.
type Favorite struct {
	ID        uint64    // favorites.id
	UserID    uint64    // favorites.user_id
	LawyerID  uint64    // favorites.lawyer_id
	CreatedAt time.Time // favorites.created_at
}
