package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/service"
	"github.com/MathiAviles/abogapp/internal/timeslot"
)

// Booker books meetings.
type Booker interface {
	Book(ctx context.Context, req service.BookingRequest) (service.BookingResult, error)
}

// Lifecycle drives meeting state.
type Lifecycle interface {
	Get(ctx context.Context, actor service.Actor, id uint64) (model.Meeting, error)
	List(ctx context.Context, actor service.Actor) ([]service.MeetingView, error)
	CanJoin(ctx context.Context, actor service.Actor, id uint64) (bool, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id uint64, status string) (model.Meeting, error)
	Finish(ctx context.Context, actor service.Actor, id uint64) (string, error)
	JoinInfo(ctx context.Context, actor service.Actor, id uint64) (service.JoinInfo, error)
	StartAt(m model.Meeting) time.Time
}

// PresenceRecorder records join and leave events.
type PresenceRecorder interface {
	RecordJoin(ctx context.Context, actor service.Actor, meetingID uint64) (time.Time, error)
	RecordLeave(ctx context.Context, actor service.Actor, meetingID uint64) (time.Time, error)
}

var (
	_ Booker           = (*service.BookingService)(nil)
	_ Lifecycle        = (*service.LifecycleService)(nil)
	_ PresenceRecorder = (*service.PresenceService)(nil)
)

// MeetingHandler serves /api/meetings.
type MeetingHandler struct {
	Booking   Booker
	Lifecycle Lifecycle
	Presence  PresenceRecorder
	Log       *zap.Logger
}

func NewMeetingHandler(b Booker, lc Lifecycle, p PresenceRecorder, log *zap.Logger) *MeetingHandler {
	return &MeetingHandler{Booking: b, Lifecycle: lc, Presence: p, Log: log}
}

type bookReq struct {
	LawyerID uint64 `json:"lawyer_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type statusReq struct {
	Status string `json:"status"`
}

// Create books a slot.  Malformed dates and times are rejected rather than
// falling back to midnight.
func (h *MeetingHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.LawyerID == 0 || req.Date == "" || strings.TrimSpace(req.Time) == "" {
		return badRequest(c, "lawyer_id, date and time are required")
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	slot, err := timeslot.Parse(req.Time)
	if err != nil {
		return badRequest(c, "time must look like 6:30 PM or 18:30")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Booking.Book(ctx, service.BookingRequest{
		ClientID: actor.ID,
		LawyerID: req.LawyerID,
		Date:     date,
		Time:     slot,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "meeting booked",
		"meeting":        h.meetingJSON(res.Meeting),
		"consumed_slots": res.Consumed,
	})
}

// List returns the caller's meetings with the other participant.
func (h *MeetingHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	views, err := h.Lifecycle.List(ctx, actor)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]echo.Map, 0, len(views))
	for _, v := range views {
		m := h.meetingJSON(v.Meeting)
		m["can_join"] = v.CanJoin
		m["with_user"] = v.WithUser
		out = append(out, m)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one meeting to a participant or staff.
func (h *MeetingHandler) Get(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		m, err := h.Lifecycle.Get(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, h.meetingJSON(m))
	})
}

// CanJoin reports whether the join window is open.
func (h *MeetingHandler) CanJoin(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		ok, err := h.Lifecycle.CanJoin(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"allowed": ok})
	})
}

// JoinInfo hands out call credentials.
func (h *MeetingHandler) JoinInfo(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		info, err := h.Lifecycle.JoinInfo(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, info)
	})
}

// UpdateStatus applies a manual status override.
func (h *MeetingHandler) UpdateStatus(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		var req statusReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
		m, err := h.Lifecycle.UpdateStatus(ctx, actor, id, strings.TrimSpace(req.Status))
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": m.ID, "status": m.Status})
	})
}

// Join records that the caller entered the call.
func (h *MeetingHandler) Join(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		at, err := h.Presence.RecordJoin(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"joined_at": at})
	})
}

// Leave records that the caller left the call.
func (h *MeetingHandler) Leave(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		at, err := h.Presence.RecordLeave(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"left_at": at})
	})
}

// Finish completes the meeting when both sides attended.
func (h *MeetingHandler) Finish(c echo.Context) error {
	return h.withMeeting(c, func(ctx context.Context, actor service.Actor, id uint64) error {
		status, err := h.Lifecycle.Finish(ctx, actor, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
	})
}

func (h *MeetingHandler) withMeeting(c echo.Context, fn func(ctx context.Context, actor service.Actor, id uint64) error) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid meeting id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return fn(ctx, actor, id)
}

func (h *MeetingHandler) meetingJSON(m model.Meeting) echo.Map {
	return echo.Map{
		"id":           m.ID,
		"client_id":    m.ClientID,
		"lawyer_id":    m.LawyerID,
		"date":         m.Date.Format(model.DateLayout),
		"time":         m.Time,
		"start_at":     h.Lifecycle.StartAt(m),
		"duration_min": m.DurationMin,
		"status":       m.Status,
		"price_cents":  m.PriceCents,
		"currency":     m.Currency,
		"created_at":   m.CreatedAt,
	}
}
