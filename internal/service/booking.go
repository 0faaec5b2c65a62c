package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/queue"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/timeslot"
)

// UserDirectory reads accounts.
type UserDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BookingStore atomically consumes slots and creates the meeting.
type BookingStore interface {
	Allocate(ctx context.Context, lawyerID uint64, date time.Time, plan repository.AllocateFunc) (model.Meeting, error)
}

// BookingRequest is a client asking for a slot on a lawyer's calendar.
type BookingRequest struct {
	ClientID uint64
	LawyerID uint64
	Date     time.Time
	Time     timeslot.Slot
}

// BookingResult is the created meeting and the slots taken off the
// lawyer's availability.
type BookingResult struct {
	Meeting  model.Meeting
	Consumed []string
}

// BookingService converts published availability into meetings.  Bookings
// for the same lawyer and date are serialised in process and, inside the
// store, by a row lock on the availability row.
type BookingService struct {
	users    UserDirectory
	store    BookingStore
	events   EventPublisher
	log      *zap.Logger
	currency string
	locks    keyedMutex
	now      func() time.Time
}

func NewBookingService(users UserDirectory, store BookingStore, events EventPublisher, currency string, log *zap.Logger) *BookingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingService{
		users:    users,
		store:    store,
		events:   events,
		log:      log,
		currency: currency,
		now:      time.Now,
	}
}

// Book reserves req.Time and the following half-hour slot for the client.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	client, err := s.users.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return BookingResult{}, ErrNotApproved
		}
		return BookingResult{}, fmt.Errorf("load client: %w", err)
	}
	if !client.IsActive || !client.IsApproved {
		return BookingResult{}, ErrNotApproved
	}
	lawyer, err := s.users.GetByID(ctx, req.LawyerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return BookingResult{}, ErrLawyerUnavailable
		}
		return BookingResult{}, fmt.Errorf("load lawyer: %w", err)
	}
	if lawyer.Role != model.RoleLawyer || !lawyer.IsActive || !lawyer.IsApproved {
		return BookingResult{}, ErrLawyerUnavailable
	}
	price := PriceCents(lawyer.ConsultationPrice)

	unlock := s.locks.Lock(strconv.FormatUint(req.LawyerID, 10) + "|" + req.Date.Format(model.DateLayout))
	defer unlock()

	var consumed []string
	m, err := s.store.Allocate(ctx, req.LawyerID, req.Date, func(open []string) ([]string, *model.Meeting, error) {
		keep, taken, ok := Consume(open, req.Time)
		if !ok {
			return nil, nil, ErrSlotUnavailable
		}
		consumed = taken
		return keep, &model.Meeting{
			ClientID:    req.ClientID,
			LawyerID:    req.LawyerID,
			Date:        req.Date,
			Time:        req.Time.String(),
			DurationMin: model.DefaultDurationMin,
			Status:      model.StatusConfirmed,
			PriceCents:  price,
			Currency:    s.currency,
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAvailabilityNotFound) {
			return BookingResult{}, ErrSlotUnavailable
		}
		return BookingResult{}, err
	}

	s.log.Info("meeting booked",
		zap.Uint64("meeting_id", m.ID),
		zap.Uint64("lawyer_id", m.LawyerID),
		zap.String("date", m.Date.Format(model.DateLayout)),
		zap.Strings("slots", consumed))

	ev := queue.MeetingBookedEvent{
		MeetingID:     m.ID,
		ClientID:      m.ClientID,
		LawyerID:      m.LawyerID,
		Date:          m.Date.Format(model.DateLayout),
		Time:          m.Time,
		ConsumedSlots: consumed,
		PriceCents:    m.PriceCents,
		Currency:      m.Currency,
		BookedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.MeetingBooked(ctx, ev); err != nil {
		s.log.Warn("publish meeting.booked failed", zap.Uint64("meeting_id", m.ID), zap.Error(err))
	}
	return BookingResult{Meeting: m, Consumed: consumed}, nil
}

// Consume removes slot and, when one exists, the half-hour slot after it
// from open.  It reports false when slot is not open.  The input is left
// untouched.
func Consume(open []string, slot timeslot.Slot) (keep, consumed []string, ok bool) {
	for _, o := range open {
		if timeslot.Canonical(o) == slot.String() {
			ok = true
			break
		}
	}
	if !ok {
		return nil, nil, false
	}
	consumed = []string{slot.String()}
	if next, has := timeslot.Next(slot); has {
		consumed = append(consumed, next.String())
	}
	keep = make([]string, 0, len(open))
	for _, o := range open {
		c := timeslot.Canonical(o)
		if c == consumed[0] || (len(consumed) > 1 && c == consumed[1]) {
			continue
		}
		keep = append(keep, o)
	}
	return keep, consumed, true
}

// PriceCents converts an advertised price to minor units, rounding half
// away from zero.  An unset price is free.
func PriceCents(p decimal.NullDecimal) int64 {
	if !p.Valid {
		return 0
	}
	return p.Decimal.Shift(2).Round(0).IntPart()
}
