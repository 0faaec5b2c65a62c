package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MathiAviles/abogapp/internal/model"
)

// PresenceRepo records join and leave events in meeting_presence.  The
// unique (meeting_id, user_id) key makes every write an upsert.
type PresenceRepo struct{ DB *sql.DB }

func NewPresenceRepo(db *sql.DB) *PresenceRepo { return &PresenceRepo{DB: db} }

// RecordJoin sets joined_at for (meeting, user), creating the row if needed.
func (r *PresenceRepo) RecordJoin(ctx context.Context, meetingID, userID uint64, role string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO meeting_presence (meeting_id, user_id, role, joined_at) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE joined_at = VALUES(joined_at), role = VALUES(role)`,
		meetingID, userID, role, at)
	if err != nil {
		return fmt.Errorf("record join: %w", err)
	}
	return nil
}

// RecordLeave sets left_at for (meeting, user), creating the row if needed.
func (r *PresenceRepo) RecordLeave(ctx context.Context, meetingID, userID uint64, role string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO meeting_presence (meeting_id, user_id, role, left_at) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE left_at = VALUES(left_at), role = VALUES(role)`,
		meetingID, userID, role, at)
	if err != nil {
		return fmt.Errorf("record leave: %w", err)
	}
	return nil
}

// ListByMeeting returns all presence rows of a meeting.
func (r *PresenceRepo) ListByMeeting(ctx context.Context, meetingID uint64) ([]model.Presence, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, meeting_id, user_id, role, joined_at, left_at FROM meeting_presence WHERE meeting_id=?",
		meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Presence, 0, 2)
	for rows.Next() {
		var (
			p              model.Presence
			joined, leftAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.MeetingID, &p.UserID, &p.Role, &joined, &leftAt); err != nil {
			return nil, err
		}
		if joined.Valid {
			p.JoinedAt = &joined.Time
		}
		if leftAt.Valid {
			p.LeftAt = &leftAt.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
