// Package queue defines the broker payloads and the background consumer of
// booking events.
package queue

// MeetingBookedQueue is the durable queue booking events are routed to.
const MeetingBookedQueue = "meeting.booked"

// MeetingBookedEvent is published after a booking commits.  It carries
// enough for consumers to log or notify without querying the database.
type MeetingBookedEvent struct {
	MeetingID     uint64   `json:"meeting_id"`
	ClientID      uint64   `json:"client_id"`
	LawyerID      uint64   `json:"lawyer_id"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	ConsumedSlots []string `json:"consumed_slots"`
	PriceCents    int64    `json:"price_cents"`
	Currency      string   `json:"currency"`
	BookedAt      string   `json:"booked_at"`
}
