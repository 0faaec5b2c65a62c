package model

import "time"

// Review is a client's rating of a completed meeting, one per meeting.
type Review struct {
	ID        uint64    // reviews.id
	MeetingID uint64    // reviews.meeting_id
	LawyerID  uint64    // reviews.lawyer_id
	ClientID  uint64    // reviews.client_id
	Rating    int       // reviews.rating (1..5)
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}
