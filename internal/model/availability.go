package model

import "time"

// AvailabilityDay is one row of the `availabilities` table: the open slots
// a lawyer published for a single calendar date.  Slots hold canonical
// "H:MM AM" strings, deduplicated and in ascending order.  The row survives
// when every slot has been booked.
type AvailabilityDay struct {
	ID       uint64    // availabilities.id
	LawyerID uint64    // availabilities.lawyer_id
	Date     time.Time // availabilities.date (midnight UTC)
	Slots    []string  // availabilities.time_slots (JSON array)
}

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"
