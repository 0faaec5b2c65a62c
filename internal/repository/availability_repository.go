package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/timeslot"
)

// AvailabilityRepo stores the open slots lawyers publish per calendar date.
// time_slots is a JSON array of canonical slot strings.
type AvailabilityRepo struct{ DB *sql.DB }

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{DB: db} }

func scanAvailability(row rowScanner) (model.AvailabilityDay, error) {
	var (
		d   model.AvailabilityDay
		raw []byte
	)
	if err := row.Scan(&d.ID, &d.LawyerID, &d.Date, &raw); err != nil {
		return d, err
	}
	slots, err := decodeSlots(raw)
	if err != nil {
		return d, fmt.Errorf("availability %d: %w", d.ID, err)
	}
	d.Slots = slots
	return d, nil
}

func decodeSlots(raw []byte) ([]string, error) {
	slots := make([]string, 0)
	if len(raw) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decode time_slots: %w", err)
	}
	return slots, nil
}

func encodeSlots(slots []string) ([]byte, error) {
	if slots == nil {
		slots = []string{}
	}
	return json.Marshal(slots)
}

// ListByLawyer returns every availability row of a lawyer ordered by date.
// Days whose slots were all booked are included with an empty set.
func (r *AvailabilityRepo) ListByLawyer(ctx context.Context, lawyerID uint64) ([]model.AvailabilityDay, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, lawyer_id, date, time_slots FROM availabilities WHERE lawyer_id=? ORDER BY date",
		lawyerID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()
	out := make([]model.AvailabilityDay, 0)
	for rows.Next() {
		d, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns the availability of one lawyer on one date.
func (r *AvailabilityRepo) Get(ctx context.Context, lawyerID uint64, date time.Time) (model.AvailabilityDay, error) {
	d, err := scanAvailability(r.DB.QueryRowContext(ctx,
		"SELECT id, lawyer_id, date, time_slots FROM availabilities WHERE lawyer_id=? AND date=?",
		lawyerID, date.Format(model.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrAvailabilityNotFound
	}
	return d, err
}

// Upsert replaces the slot set for (lawyer, date), creating the row on the
// first publish, and returns what was stored.  Slots already consumed by a
// live meeting on that date are dropped, so republishing a day never
// re-opens a booked slot.  The row stays locked while the booked set is
// read, which orders this against Allocate.  Slots must already be
// canonical and ordered.
func (r *AvailabilityRepo) Upsert(ctx context.Context, lawyerID uint64, date time.Time, slots []string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	day := date.Format(model.DateLayout)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO availabilities (lawyer_id, date, time_slots) VALUES (?,?,'[]')
		 ON DUPLICATE KEY UPDATE id = id`, lawyerID, day); err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}
	row, err := r.GetForUpdateTx(ctx, tx, lawyerID, date)
	if err != nil {
		return nil, err
	}
	booked, err := bookedTimesTx(ctx, tx, lawyerID, day)
	if err != nil {
		return nil, err
	}
	open := withoutBooked(slots, booked)
	if err := r.UpdateSlotsTx(ctx, tx, row.ID, open); err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return open, nil
}

// bookedTimesTx returns the start slots of the lawyer's meetings on day
// that still hold their slots.
func bookedTimesTx(ctx context.Context, tx *sql.Tx, lawyerID uint64, day string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT meeting_time FROM meetings WHERE lawyer_id=? AND meeting_date=? AND status<>?",
		lawyerID, day, model.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("booked slots: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// withoutBooked drops from slots every start time in booked and the
// half-hour slot after it, matching the span a booking consumes.
func withoutBooked(slots, booked []string) []string {
	taken := make(map[timeslot.Slot]bool, 2*len(booked))
	for _, b := range booked {
		s := timeslot.Normalize(b)
		taken[s] = true
		if next, ok := timeslot.Next(s); ok {
			taken[next] = true
		}
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if !taken[timeslot.Normalize(s)] {
			out = append(out, s)
		}
	}
	return out
}

// GetForUpdateTx reads the availability row and locks it until tx ends.
// Concurrent bookings of the same lawyer and date queue on this lock.
func (r *AvailabilityRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, lawyerID uint64, date time.Time) (model.AvailabilityDay, error) {
	d, err := scanAvailability(tx.QueryRowContext(ctx,
		"SELECT id, lawyer_id, date, time_slots FROM availabilities WHERE lawyer_id=? AND date=? FOR UPDATE",
		lawyerID, date.Format(model.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrAvailabilityNotFound
	}
	return d, err
}

// UpdateSlotsTx overwrites the slot set of a locked row.
func (r *AvailabilityRepo) UpdateSlotsTx(ctx context.Context, tx *sql.Tx, id uint64, slots []string) error {
	raw, err := encodeSlots(slots)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE availabilities SET time_slots=? WHERE id=?", raw, id)
	return err
}
