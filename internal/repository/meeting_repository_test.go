package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiAviles/abogapp/internal/model"
)

var (
	lockDay     = regexp.QuoteMeta("SELECT id, lawyer_id, date, time_slots FROM availabilities WHERE lawyer_id=? AND date=? FOR UPDATE")
	updateSlots = regexp.QuoteMeta("UPDATE availabilities SET time_slots=? WHERE id=?")
	insertMeet  = regexp.QuoteMeta("INSERT INTO meetings (client_id, lawyer_id, meeting_date, meeting_time")
	selectMeet  = regexp.QuoteMeta("FROM meetings WHERE id=?")
)

var bookingDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*MeetingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMeetingRepo(db), mock
}

func dayRow(slots string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "lawyer_id", "date", "time_slots"}).
		AddRow(7, 2, bookingDay, slots)
}

// bookAt returns a plan that takes start and the slot after it.
func bookAt(start, next string) AllocateFunc {
	return func(open []string) ([]string, *model.Meeting, error) {
		keep := make([]string, 0, len(open))
		for _, s := range open {
			if s != start && s != next {
				keep = append(keep, s)
			}
		}
		return keep, &model.Meeting{
			ClientID: 1, LawyerID: 2, Date: bookingDay, Time: start,
			DurationMin: model.DefaultDurationMin, Status: model.StatusConfirmed,
			PriceCents: 5000, Currency: "USD",
		}, nil
	}
}

func TestAllocate_CommitsSlotsAndMeetingTogether(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(lockDay).WithArgs(2, "2025-03-10").
		WillReturnRows(dayRow(`["6:30 AM","7:00 AM","8:00 AM"]`))
	mock.ExpectExec(updateSlots).WithArgs([]byte(`["8:00 AM"]`), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMeet).WithArgs(1, 2, "2025-03-10", "6:30 AM", 30, model.StatusConfirmed, 5000, "USD").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(selectMeet).WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "lawyer_id", "meeting_date", "meeting_time",
			"duration_min", "status", "price_cents", "currency", "created_at"}).
			AddRow(11, 1, 2, bookingDay, "6:30 AM", 30, model.StatusConfirmed, 5000, "USD", created))
	mock.ExpectCommit()

	m, err := repo.Allocate(context.Background(), 2, bookingDay, bookAt("6:30 AM", "7:00 AM"))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), m.ID)
	assert.Equal(t, "6:30 AM", m.Time)
	assert.Equal(t, created, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_RollsBack(t *testing.T) {
	errTaken := errors.New("slot taken")

	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		plan   AllocateFunc
		want   error
	}{
		{
			name: "no published day",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockDay).WithArgs(2, "2025-03-10").
					WillReturnRows(sqlmock.NewRows([]string{"id", "lawyer_id", "date", "time_slots"}))
			},
			plan: bookAt("6:30 AM", "7:00 AM"),
			want: ErrAvailabilityNotFound,
		},
		{
			name: "plan rejects the slot",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockDay).WillReturnRows(dayRow(`["8:00 AM"]`))
			},
			plan: func([]string) ([]string, *model.Meeting, error) { return nil, nil, errTaken },
			want: errTaken,
		},
		{
			name: "meeting insert fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockDay).WillReturnRows(dayRow(`["6:30 AM","7:00 AM"]`))
				mock.ExpectExec(updateSlots).WithArgs([]byte(`[]`), 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(insertMeet).WillReturnError(errTaken)
			},
			plan: bookAt("6:30 AM", "7:00 AM"),
			want: errTaken,
		},
		{
			name: "slot update fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockDay).WillReturnRows(dayRow(`["6:30 AM","7:00 AM"]`))
				mock.ExpectExec(updateSlots).WillReturnError(errTaken)
			},
			plan: bookAt("6:30 AM", "7:00 AM"),
			want: errTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectBegin()
			tt.expect(mock)
			mock.ExpectRollback()

			_, err := repo.Allocate(context.Background(), 2, bookingDay, tt.plan)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet(), "must roll back without committing")
		})
	}
}
