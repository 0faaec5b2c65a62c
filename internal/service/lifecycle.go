package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/lifecycle"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/timeslot"
	"github.com/MathiAviles/abogapp/internal/video"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   uint64
	Role string
}

// MeetingStore reads meetings and updates their status.
type MeetingStore interface {
	GetByID(ctx context.Context, id uint64) (model.Meeting, error)
	ListByParticipant(ctx context.Context, userID uint64) ([]model.Meeting, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// PresenceStore records attendance.
type PresenceStore interface {
	RecordJoin(ctx context.Context, meetingID, userID uint64, role string, at time.Time) error
	RecordLeave(ctx context.Context, meetingID, userID uint64, role string, at time.Time) error
	ListByMeeting(ctx context.Context, meetingID uint64) ([]model.Presence, error)
}

// UserBatch loads several accounts at once.
type UserBatch interface {
	GetMany(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
}

// LifecycleService applies the meeting state rules against storage.
type LifecycleService struct {
	meetings MeetingStore
	presence PresenceStore
	users    UserBatch
	video    video.Provider
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewLifecycleService(meetings MeetingStore, presence PresenceStore, users UserBatch, vp video.Provider, loc *time.Location, log *zap.Logger) *LifecycleService {
	if loc == nil {
		loc = time.UTC
	}
	return &LifecycleService{
		meetings: meetings,
		presence: presence,
		users:    users,
		video:    vp,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

func (s *LifecycleService) load(ctx context.Context, id uint64) (model.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMeetingNotFound) {
		return m, ErrMeetingNotFound
	}
	if err != nil {
		return m, fmt.Errorf("load meeting %d: %w", id, err)
	}
	return m, nil
}

// loadAs loads a meeting the actor may act on.  Staff pass when staffOK
// and the stored account still holds a staff role.
func (s *LifecycleService) loadAs(ctx context.Context, actor Actor, id uint64, staffOK bool) (model.Meeting, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return m, err
	}
	if m.IsParticipant(actor.ID) {
		return m, nil
	}
	if staffOK && model.IsStaffRole(actor.Role) {
		staff, err := s.isStaff(ctx, actor.ID)
		if err != nil {
			return m, err
		}
		if staff {
			return m, nil
		}
	}
	return m, ErrNotParticipant
}

// isStaff reports whether userID is an active admin or backoffice account.
func (s *LifecycleService) isStaff(ctx context.Context, userID uint64) (bool, error) {
	users, err := s.users.GetMany(ctx, []uint64{userID})
	if err != nil {
		return false, fmt.Errorf("load staff account: %w", err)
	}
	u, ok := users[userID]
	return ok && u.IsActive && u.IsStaff(), nil
}

// StartAt is the meeting's scheduled start in the service location.
func (s *LifecycleService) StartAt(m model.Meeting) time.Time {
	return lifecycle.StartAt(m.Date, timeslot.Normalize(m.Time).Minutes(), s.loc)
}

func (s *LifecycleService) canJoin(m model.Meeting) bool {
	d := m.DurationMin
	if d <= 0 {
		d = model.DefaultDurationMin
	}
	return lifecycle.CanJoin(s.StartAt(m), time.Duration(d)*time.Minute, s.now())
}

// Get returns a meeting visible to actor.
func (s *LifecycleService) Get(ctx context.Context, actor Actor, id uint64) (model.Meeting, error) {
	return s.loadAs(ctx, actor, id, true)
}

// Counterpart describes the other side of a meeting for listings.
type Counterpart struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	Avatar *string `json:"avatar"`
}

// MeetingView is a meeting as listed to one of its participants.
type MeetingView struct {
	model.Meeting
	StartAt  time.Time   `json:"start_at"`
	CanJoin  bool        `json:"can_join"`
	WithUser Counterpart `json:"with_user"`
}

// List returns the actor's meetings with the counterpart's display data.
func (s *LifecycleService) List(ctx context.Context, actor Actor) ([]MeetingView, error) {
	ms, err := s.meetings.ListByParticipant(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(ms))
	seen := make(map[uint64]bool, len(ms))
	for _, m := range ms {
		other := m.CounterpartID(actor.ID)
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	users, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load counterparts: %w", err)
	}
	out := make([]MeetingView, 0, len(ms))
	for _, m := range ms {
		other := m.CounterpartID(actor.ID)
		cp := Counterpart{ID: other, Role: m.ParticipantRole(other)}
		if u, ok := users[other]; ok {
			cp.Name = u.DisplayName()
			cp.Avatar = u.ProfilePictureURL
		}
		out = append(out, MeetingView{
			Meeting:  m,
			StartAt:  s.StartAt(m),
			CanJoin:  lifecycle.IsJoinable(m.Status) && s.canJoin(m),
			WithUser: cp,
		})
	}
	return out, nil
}

// CanJoin reports whether a participant is inside the join window now.
func (s *LifecycleService) CanJoin(ctx context.Context, actor Actor, id uint64) (bool, error) {
	m, err := s.loadAs(ctx, actor, id, false)
	if err != nil {
		return false, err
	}
	return s.canJoin(m), nil
}

// UpdateStatus overrides a meeting's status with one of the manual
// statuses.  Any manual status may follow any other; a cancelled meeting
// cannot be revived.
func (s *LifecycleService) UpdateStatus(ctx context.Context, actor Actor, id uint64, status string) (model.Meeting, error) {
	m, err := s.loadAs(ctx, actor, id, true)
	if err != nil {
		return m, err
	}
	if !lifecycle.IsManualStatus(status) {
		return m, ErrInvalidStatus
	}
	if m.Status == model.StatusCancelled {
		return m, ErrMeetingCancelled
	}
	if m.Status == status {
		return m, nil
	}
	if err := s.meetings.UpdateStatus(ctx, id, status); err != nil {
		return m, err
	}
	s.log.Info("meeting status updated",
		zap.Uint64("meeting_id", id), zap.String("from", m.Status), zap.String("to", status),
		zap.Uint64("actor_id", actor.ID))
	m.Status = status
	return m, nil
}

// Finish completes the meeting once both the client and the lawyer have
// joined.  Otherwise, and for meetings already terminal, the status is
// returned unchanged.
func (s *LifecycleService) Finish(ctx context.Context, actor Actor, id uint64) (string, error) {
	m, err := s.loadAs(ctx, actor, id, true)
	if err != nil {
		return "", err
	}
	if lifecycle.IsTerminal(m.Status) {
		return m.Status, nil
	}
	rows, err := s.presence.ListByMeeting(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load presence: %w", err)
	}
	next := lifecycle.Complete(m.Status, lifecycle.AttendanceOf(rows))
	if next == m.Status {
		return next, nil
	}
	if err := s.meetings.UpdateStatus(ctx, id, next); err != nil {
		return "", err
	}
	s.log.Info("meeting finished", zap.Uint64("meeting_id", id), zap.String("status", next))
	return next, nil
}

// JoinInfo is what a participant needs to enter the call.
type JoinInfo struct {
	APIKey  string `json:"api_key"`
	Token   string `json:"token"`
	CallID  string `json:"call_id"`
	UserID  uint64 `json:"user_id"`
	StartAt string `json:"start_at"`
}

// JoinInfo issues call credentials.  Checks run in a fixed order:
// existence, participation, status, then the time window.
func (s *LifecycleService) JoinInfo(ctx context.Context, actor Actor, id uint64) (JoinInfo, error) {
	m, err := s.loadAs(ctx, actor, id, false)
	if err != nil {
		return JoinInfo{}, err
	}
	if !lifecycle.IsJoinable(m.Status) {
		return JoinInfo{}, ErrNotJoinable
	}
	if !s.canJoin(m) {
		return JoinInfo{}, ErrOutsideWindow
	}
	if s.video == nil {
		return JoinInfo{}, ErrVideoUnavailable
	}
	tok, err := s.video.UserToken(actor.ID)
	if errors.Is(err, video.ErrNotConfigured) {
		return JoinInfo{}, ErrVideoUnavailable
	}
	if err != nil {
		return JoinInfo{}, fmt.Errorf("video token: %w", err)
	}
	return JoinInfo{
		APIKey:  s.video.APIKey(),
		Token:   tok,
		CallID:  video.CallID(m.ID),
		UserID:  actor.ID,
		StartAt: s.StartAt(m).Format(time.RFC3339),
	}, nil
}
