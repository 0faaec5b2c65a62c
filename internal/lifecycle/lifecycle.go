// Package lifecycle holds the meeting state rules as pure functions so they
// can be exercised without storage: join-window gating, which statuses may
// be set by hand, which ones allow fetching a call token, and when an
// explicit finish completes a meeting.
package lifecycle

import (
	"time"

	"github.com/MathiAviles/abogapp/internal/model"
)

// EarlyJoin is how long before the scheduled start participants may join.
const EarlyJoin = 10 * time.Minute

// manual lists the statuses accepted by a direct status update.
var manual = map[string]bool{
	model.StatusConfirmed: true,
	model.StatusUpcoming:  true,
	model.StatusStarted:   true,
	model.StatusCompleted: true,
}

// joinable is the allow-list checked before handing out a call token.
// "paid" and "confirmed" are accepted for rows written by the payment flow.
var joinable = map[string]bool{
	model.StatusConfirmed: true,
	"paid":                true,
	"confirmed":           true,
	model.StatusUpcoming:  true,
	model.StatusStarted:   true,
}

// IsManualStatus reports whether status may be set through a status update.
func IsManualStatus(status string) bool { return manual[status] }

// IsJoinable reports whether a meeting in status may issue call tokens.
func IsJoinable(status string) bool { return joinable[status] }

// IsTerminal reports whether no further transition happens from status.
func IsTerminal(status string) bool {
	return status == model.StatusCompleted || status == model.StatusCancelled
}

// CanJoin reports whether now falls within [start-EarlyJoin, start+duration).
func CanJoin(start time.Time, duration time.Duration, now time.Time) bool {
	return !now.Before(start.Add(-EarlyJoin)) && now.Before(start.Add(duration))
}

// Attendance summarises the presence rows of a meeting.
type Attendance struct {
	ClientJoined bool
	LawyerJoined bool
}

// AttendanceOf folds presence rows into an Attendance.  Only rows with a
// join timestamp count; leaving does not undo a join.
func AttendanceOf(rows []model.Presence) Attendance {
	var a Attendance
	for _, p := range rows {
		if p.JoinedAt == nil {
			continue
		}
		switch p.Role {
		case model.RoleClient:
			a.ClientJoined = true
		case model.RoleLawyer:
			a.LawyerJoined = true
		}
	}
	return a
}

// Complete returns the status a meeting moves to when a participant asks to
// finish it.  Terminal meetings keep their status; otherwise the meeting is
// completed only once both the client and the lawyer have joined.
func Complete(status string, a Attendance) string {
	if IsTerminal(status) {
		return status
	}
	if a.ClientJoined && a.LawyerJoined {
		return model.StatusCompleted
	}
	return status
}

// StartAt combines a meeting date with its canonical start minute in loc.
func StartAt(date time.Time, minutes int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(minutes) * time.Minute)
}
