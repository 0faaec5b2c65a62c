package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MathiAviles/abogapp/internal/model"
)

// MeetingRepo persists booked consultations.  Meetings are never deleted;
// only their status changes after creation.
type MeetingRepo struct {
	db    *sql.DB
	avail *AvailabilityRepo
}

// NewMeetingRepo returns a MeetingRepo bound to db.
func NewMeetingRepo(db *sql.DB) *MeetingRepo {
	return &MeetingRepo{db: db, avail: NewAvailabilityRepo(db)}
}

const meetingColumns = `id, client_id, lawyer_id, meeting_date, meeting_time, duration_min, status,
	price_cents, currency, created_at`

func scanMeeting(row rowScanner) (model.Meeting, error) {
	var m model.Meeting
	err := row.Scan(&m.ID, &m.ClientID, &m.LawyerID, &m.Date, &m.Time, &m.DurationMin,
		&m.Status, &m.PriceCents, &m.Currency, &m.CreatedAt)
	return m, err
}

// CreateTx inserts m inside tx and fills in its generated id and
// creation timestamp.
func (r *MeetingRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Meeting) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO meetings (client_id, lawyer_id, meeting_date, meeting_time, duration_min, status,
			price_cents, currency) VALUES (?,?,?,?,?,?,?,?)`,
		m.ClientID, m.LawyerID, m.Date.Format(model.DateLayout), m.Time, m.DurationMin, m.Status,
		m.PriceCents, m.Currency)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := scanMeeting(tx.QueryRowContext(ctx,
		"SELECT "+meetingColumns+" FROM meetings WHERE id=?", id))
	if err != nil {
		return err
	}
	*m = saved
	return nil
}

// AllocateFunc decides a booking against the locked open-slot set of a day.
// It returns the slots that stay open and the meeting to insert.  Returning
// an error aborts the allocation without touching storage.
type AllocateFunc func(open []string) (keep []string, m *model.Meeting, err error)

// Allocate runs plan against the locked availability row of (lawyer, date)
// and commits the shrunken slot set together with the new meeting.  Either
// both writes land or neither does.
func (r *MeetingRepo) Allocate(ctx context.Context, lawyerID uint64, date time.Time, plan AllocateFunc) (model.Meeting, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Meeting{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	day, err := r.avail.GetForUpdateTx(ctx, tx, lawyerID, date)
	if err != nil {
		return model.Meeting{}, err
	}
	keep, m, err := plan(day.Slots)
	if err != nil {
		return model.Meeting{}, err
	}
	if err := r.avail.UpdateSlotsTx(ctx, tx, day.ID, keep); err != nil {
		return model.Meeting{}, fmt.Errorf("consume slots: %w", err)
	}
	if err := r.CreateTx(ctx, tx, m); err != nil {
		return model.Meeting{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Meeting{}, err
	}
	committed = true
	return *m, nil
}

// GetByID returns the meeting or ErrMeetingNotFound.
func (r *MeetingRepo) GetByID(ctx context.Context, id uint64) (model.Meeting, error) {
	m, err := scanMeeting(r.db.QueryRowContext(ctx,
		"SELECT "+meetingColumns+" FROM meetings WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrMeetingNotFound
	}
	return m, err
}

// ListByParticipant returns the meetings where userID is the client or
// the lawyer, soonest first.
func (r *MeetingRepo) ListByParticipant(ctx context.Context, userID uint64) ([]model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+meetingColumns+` FROM meetings WHERE client_id=? OR lawyer_id=?
		 ORDER BY meeting_date, created_at`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()
	out := make([]model.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateStatus sets meetings.status.
func (r *MeetingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE meetings SET status=? WHERE id=?", status, id)
	if err != nil {
		return fmt.Errorf("update meeting status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when the value is unchanged.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
