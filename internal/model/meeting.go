package model

import "time"

// Meeting statuses stored in meetings.status.
const (
	StatusConfirmed = "confirmada"
	StatusUpcoming  = "por-comenzar"
	StatusStarted   = "iniciada"
	StatusCompleted = "completada"
	StatusCancelled = "cancelada"
)

// DefaultDurationMin is the length of a consultation.
const DefaultDurationMin = 30

// Meeting records one booked consultation between a client and a lawyer.
//
// Fields:
//  ID          – primary key identifier.
//  ClientID    – user who booked.
//  LawyerID    – lawyer being consulted.
//  Date        – calendar date of the session (midnight UTC).
//  Time        – canonical start slot, e.g. "6:30 AM".
//  DurationMin – session length in minutes.
//  Status      – lifecycle state.
//  PriceCents  – lawyer's price frozen at booking, minor units.
//  Currency    – ISO currency code for PriceCents.
//  CreatedAt   – creation timestamp.
type Meeting struct {
	ID          uint64    // meetings.id
	ClientID    uint64    // meetings.client_id
	LawyerID    uint64    // meetings.lawyer_id
	Date        time.Time // meetings.meeting_date
	Time        string    // meetings.meeting_time
	DurationMin int       // meetings.duration_min
	Status      string    // meetings.status
	PriceCents  int64     // meetings.price_cents
	Currency    string    // meetings.currency
	CreatedAt   time.Time // meetings.created_at
}

// IsParticipant reports whether userID is the meeting's client or lawyer.
func (m Meeting) IsParticipant(userID uint64) bool {
	return userID == m.ClientID || userID == m.LawyerID
}

// ParticipantRole returns cliente or abogado for a participant, and "" for
// anyone else.
func (m Meeting) ParticipantRole(userID uint64) string {
	switch userID {
	case m.ClientID:
		return RoleClient
	case m.LawyerID:
		return RoleLawyer
	}
	return ""
}

// CounterpartID returns the other participant's id.
func (m Meeting) CounterpartID(userID uint64) uint64 {
	if userID == m.ClientID {
		return m.LawyerID
	}
	return m.ClientID
}
