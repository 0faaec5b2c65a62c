package service

import (
	"context"
	"time"

	"github.com/MathiAviles/abogapp/internal/model"
)

// PresenceService records join and leave events for meeting participants
// and staff.
type PresenceService struct {
	lc    *LifecycleService
	store PresenceStore
	now   func() time.Time
}

func NewPresenceService(lc *LifecycleService, store PresenceStore) *PresenceService {
	return &PresenceService{lc: lc, store: store, now: time.Now}
}

// RecordJoin stamps joined_at for the actor and returns the timestamp.
func (s *PresenceService) RecordJoin(ctx context.Context, actor Actor, meetingID uint64) (time.Time, error) {
	return s.record(ctx, actor, meetingID, s.store.RecordJoin)
}

// RecordLeave stamps left_at for the actor and returns the timestamp.
func (s *PresenceService) RecordLeave(ctx context.Context, actor Actor, meetingID uint64) (time.Time, error) {
	return s.record(ctx, actor, meetingID, s.store.RecordLeave)
}

type presenceWrite func(ctx context.Context, meetingID, userID uint64, role string, at time.Time) error

func (s *PresenceService) record(ctx context.Context, actor Actor, meetingID uint64, write presenceWrite) (time.Time, error) {
	m, err := s.lc.loadAs(ctx, actor, meetingID, true)
	if err != nil {
		return time.Time{}, err
	}
	at := s.now().UTC().Truncate(time.Second)
	if err := write(ctx, meetingID, actor.ID, PresenceRole(m, actor), at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// PresenceRole is cliente or abogado for the meeting's participants and the
// actor's own role for staff.
func PresenceRole(m model.Meeting, actor Actor) string {
	if r := m.ParticipantRole(actor.ID); r != "" {
		return r
	}
	return actor.Role
}
