package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/queue"
	"github.com/MathiAviles/abogapp/internal/repository"
)

type fakeUsers map[uint64]model.User

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) GetMany(_ context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := map[uint64]model.User{}
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func newUsers() fakeUsers {
	pic := "https://img/ana.png"
	return fakeUsers{
		1: {ID: 1, Role: model.RoleClient, Nombres: "Carla", Apellidos: "Ruiz", IsActive: true, IsApproved: true},
		2: {ID: 2, Role: model.RoleLawyer, Nombres: "Ana", Apellidos: "Paz", IsActive: true, IsApproved: true,
			ProfilePictureURL: &pic,
			ConsultationPrice: decimal.NewNullDecimal(decimal.RequireFromString("49.995"))},
		3: {ID: 3, Role: model.RoleClient, IsActive: true, IsApproved: false},
		4: {ID: 4, Role: model.RoleLawyer, IsActive: true, IsApproved: false},
		5: {ID: 5, Role: model.RoleAdmin, IsActive: true, IsApproved: true},
		6: {ID: 6, Role: model.RoleClient, IsActive: true, IsApproved: true},
		8: {ID: 8, Role: model.RoleBackoffice, IsActive: true, IsApproved: true},
	}
}

// fakeBookingStore does an unlocked read-then-write so that only the
// service's own serialisation prevents double booking.
type fakeBookingStore struct {
	mu       sync.Mutex
	days     map[string][]string
	meetings []model.Meeting
}

func dayKey(lawyerID uint64, date time.Time) string {
	return strconv.FormatUint(lawyerID, 10) + "|" + date.Format(model.DateLayout)
}

func (f *fakeBookingStore) slots(lawyerID uint64, date time.Time) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.days[dayKey(lawyerID, date)]...)
}

func (f *fakeBookingStore) Allocate(_ context.Context, lawyerID uint64, date time.Time, plan repository.AllocateFunc) (model.Meeting, error) {
	key := dayKey(lawyerID, date)
	f.mu.Lock()
	open, ok := f.days[key]
	open = append([]string(nil), open...)
	f.mu.Unlock()
	if !ok {
		return model.Meeting{}, repository.ErrAvailabilityNotFound
	}

	time.Sleep(2 * time.Millisecond)
	keep, m, err := plan(open)
	if err != nil {
		return model.Meeting{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.days[key] = keep
	m.ID = uint64(len(f.meetings) + 1)
	m.CreatedAt = time.Now()
	f.meetings = append(f.meetings, *m)
	return *m, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.MeetingBookedEvent
	err    error
}

func (f *fakePublisher) MeetingBooked(_ context.Context, ev queue.MeetingBookedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fakeMeetings struct {
	mu      sync.Mutex
	byID    map[uint64]model.Meeting
	updates int
}

func newMeetings(ms ...model.Meeting) *fakeMeetings {
	f := &fakeMeetings{byID: map[uint64]model.Meeting{}}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMeetings) GetByID(_ context.Context, id uint64) (model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return m, repository.ErrMeetingNotFound
	}
	return m, nil
}

func (f *fakeMeetings) ListByParticipant(_ context.Context, userID uint64) ([]model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Meeting
	for _, m := range f.byID {
		if m.IsParticipant(userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMeetings) UpdateStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return repository.ErrMeetingNotFound
	}
	m.Status = status
	f.byID[id] = m
	f.updates++
	return nil
}

type fakePresence struct {
	mu   sync.Mutex
	rows map[[2]uint64]model.Presence
}

func newPresence() *fakePresence { return &fakePresence{rows: map[[2]uint64]model.Presence{}} }

func (f *fakePresence) upsert(meetingID, userID uint64, role string, apply func(*model.Presence)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]uint64{meetingID, userID}
	p, ok := f.rows[k]
	if !ok {
		p = model.Presence{ID: uint64(len(f.rows) + 1), MeetingID: meetingID, UserID: userID}
	}
	p.Role = role
	apply(&p)
	f.rows[k] = p
}

func (f *fakePresence) RecordJoin(_ context.Context, meetingID, userID uint64, role string, at time.Time) error {
	f.upsert(meetingID, userID, role, func(p *model.Presence) { p.JoinedAt = &at })
	return nil
}

func (f *fakePresence) RecordLeave(_ context.Context, meetingID, userID uint64, role string, at time.Time) error {
	f.upsert(meetingID, userID, role, func(p *model.Presence) { p.LeftAt = &at })
	return nil
}

func (f *fakePresence) ListByMeeting(_ context.Context, meetingID uint64) ([]model.Presence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Presence
	for k, p := range f.rows {
		if k[0] == meetingID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeVideo struct{ err error }

func (fakeVideo) APIKey() string { return "pk" }

func (f fakeVideo) UserToken(userID uint64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok-" + strconv.FormatUint(userID, 10), nil
}
