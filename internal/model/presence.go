package model

import "time"

// Presence is a row of `meeting_presence`, one per (meeting, user).  Each
// join or leave event overwrites the matching timestamp; rejoins are not
// counted.
type Presence struct {
	ID        uint64     // meeting_presence.id
	MeetingID uint64     // meeting_presence.meeting_id
	UserID    uint64     // meeting_presence.user_id
	Role      string     // meeting_presence.role
	JoinedAt  *time.Time // meeting_presence.joined_at (nullable)
	LeftAt    *time.Time // meeting_presence.left_at (nullable)
}
