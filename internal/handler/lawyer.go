package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/service"
	"github.com/MathiAviles/abogapp/internal/timeslot"
)

// LawyerDirectory reads and edits lawyer accounts.
type LawyerDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) error
	SearchLawyers(ctx context.Context, especialidad string) ([]model.User, error)
}

// AvailabilityStore reads and replaces published slots.
type AvailabilityStore interface {
	ListByLawyer(ctx context.Context, lawyerID uint64) ([]model.AvailabilityDay, error)
	Upsert(ctx context.Context, lawyerID uint64, date time.Time, slots []string) ([]string, error)
}

// LawyerHandler serves lawyer profiles and availability, both the
// lawyer's own view and the public one.
type LawyerHandler struct {
	Users        LawyerDirectory
	Availability AvailabilityStore
	Log          *zap.Logger
}

func NewLawyerHandler(u LawyerDirectory, a AvailabilityStore, log *zap.Logger) *LawyerHandler {
	return &LawyerHandler{Users: u, Availability: a, Log: log}
}

var maxPrice = decimal.RequireFromString("99999999.99")

type profileReq struct {
	AboutMe           *string          `json:"about_me"`
	Titles            *string          `json:"titles"`
	ConsultationPrice *decimal.Decimal `json:"consultation_price"`
}

type availabilityReq struct {
	Date      string   `json:"date"`
	TimeSlots []string `json:"time_slots"`
}

func priceJSON(p decimal.NullDecimal) any {
	if !p.Valid {
		return nil
	}
	return p.Decimal.StringFixed(2)
}

func publicLawyerJSON(u model.User) echo.Map {
	return echo.Map{
		"id":                  u.ID,
		"nombres":             u.Nombres,
		"apellidos":           u.Apellidos,
		"especialidad":        u.Especialidad,
		"about_me":            u.AboutMe,
		"titles":              u.Titles,
		"profile_picture_url": u.ProfilePictureURL,
		"consultation_price":  priceJSON(u.ConsultationPrice),
	}
}

func bookable(u model.User) bool {
	return u.Role == model.RoleLawyer && u.IsApproved && u.IsActive
}

// GetProfile returns the calling lawyer's profile.
func (h *LawyerHandler) GetProfile(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := publicLawyerJSON(u)
	out["kyc_status"] = u.KYCStatus
	out["is_approved"] = u.IsApproved
	return c.JSON(http.StatusOK, out)
}

// UpdateProfile edits about_me, titles and consultation_price.  Booked
// meetings keep the price they were booked at.
func (h *LawyerHandler) UpdateProfile(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if p := req.ConsultationPrice; p != nil && (p.IsNegative() || p.GreaterThan(maxPrice)) {
		return badRequest(c, "consultation_price out of range")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	err := h.Users.UpdateProfile(ctx, actor.ID, repository.ProfileUpdate{
		AboutMe:           req.AboutMe,
		Titles:            req.Titles,
		ConsultationPrice: req.ConsultationPrice,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// MyAvailability returns the caller's published slots keyed by date.
func (h *LawyerHandler) MyAvailability(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return h.availabilityMap(ctx, c, actor.ID)
}

// PublishAvailability replaces the slots of one date.  Every slot must be
// a valid half-hour time; duplicates collapse.
func (h *LawyerHandler) PublishAvailability(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Date == "" || req.TimeSlots == nil {
		return badRequest(c, "date and time_slots are required")
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	slots, bad := parseSlots(req.TimeSlots)
	if bad != "" {
		return badRequest(c, "invalid time slot: "+bad)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	open, err := h.Availability.Upsert(ctx, actor.ID, date, timeslot.Strings(slots))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "availability saved",
		"date":       req.Date,
		"time_slots": open,
	})
}

// bookableSlots is the half-hour grid published availability must sit on.
var bookableSlots = func() map[timeslot.Slot]bool {
	m := make(map[timeslot.Slot]bool, timeslot.PerDay)
	for _, s := range timeslot.Day() {
		m[s] = true
	}
	return m
}()

// parseSlots strictly parses every entry and returns the deduplicated,
// ordered set, or the first offending entry.
func parseSlots(in []string) ([]timeslot.Slot, string) {
	canon := make([]string, 0, len(in))
	for _, raw := range in {
		s, err := timeslot.Parse(raw)
		if err != nil || !bookableSlots[s] {
			return nil, raw
		}
		canon = append(canon, s.String())
	}
	return timeslot.NormalizeSet(canon), ""
}

// PublicAvailability returns the open slots of a bookable lawyer.
func (h *LawyerHandler) PublicAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if _, err := h.bookableLawyer(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return h.availabilityMap(ctx, c, id)
}

// PublicProfile returns a bookable lawyer's profile.
func (h *LawyerHandler) PublicProfile(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.bookableLawyer(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, publicLawyerJSON(u))
}

// Search lists bookable lawyers by specialty.
func (h *LawyerHandler) Search(c echo.Context) error {
	esp := strings.TrimSpace(c.Param("especialidad"))
	if esp == "" {
		return badRequest(c, "especialidad required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.SearchLawyers(ctx, esp)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, publicLawyerJSON(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LawyerHandler) bookableLawyer(ctx context.Context, id uint64) (model.User, error) {
	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return u, service.ErrLawyerUnavailable
	}
	if err != nil {
		return u, err
	}
	if !bookable(u) {
		return u, service.ErrLawyerUnavailable
	}
	return u, nil
}

func (h *LawyerHandler) availabilityMap(ctx context.Context, c echo.Context, lawyerID uint64) error {
	days, err := h.Availability.ListByLawyer(ctx, lawyerID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make(map[string][]string, len(days))
	for _, d := range days {
		out[d.Date.Format(model.DateLayout)] = d.Slots
	}
	return c.JSON(http.StatusOK, out)
}
