package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/apperr"
	"github.com/MathiAviles/abogapp/internal/model"
)

// KYCStore updates identity verification state and account flags.
type KYCStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetKYC(ctx context.Context, id uint64, status string, notes *string) (model.User, error)
	SetActive(ctx context.Context, id uint64, active bool) error
	ListLawyersByKYC(ctx context.Context, status string) ([]model.User, error)
}

// KYCHandler serves lawyer verification and the admin review queue.
type KYCHandler struct {
	Users KYCStore
	Log   *zap.Logger
}

func NewKYCHandler(u KYCStore, log *zap.Logger) *KYCHandler {
	return &KYCHandler{Users: u, Log: log}
}

var (
	errKYCLawyersOnly = apperr.New(apperr.Validation, "LAWYERS_ONLY", "KYC applies to lawyers only")
	errKYCApproved    = apperr.New(apperr.Conflict, "KYC_ALREADY_APPROVED", "KYC already approved")
)

type rejectReq struct {
	Reason string `json:"reason"`
}

func kycJSON(u model.User) echo.Map {
	return echo.Map{
		"user_id":        u.ID,
		"role":           u.Role,
		"kyc_status":     u.KYCStatus,
		"kyc_notes":      u.KYCNotes,
		"email_verified": u.EmailVerified,
		"is_approved":    u.IsApproved,
	}
}

// Status returns the caller's verification state.
func (h *KYCHandler) Status(c echo.Context) error {
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
	return c.JSON(http.StatusOK, kycJSON(u))
}

// Submit moves the calling lawyer's KYC to pending.  Document storage is
// handled elsewhere; this only records the submission.
func (h *KYCHandler) Submit(c echo.Context) error {
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
	if u.Role != model.RoleLawyer {
		return fail(c, h.Log, errKYCLawyersOnly)
	}
	if u.KYCStatus == model.KYCApproved {
		return fail(c, h.Log, errKYCApproved)
	}
	u, err = h.Users.SetKYC(ctx, actor.ID, model.KYCPending, nil)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, kycJSON(u))
}

// Approve marks a lawyer's KYC approved, which approves the account once
// the email is verified.
func (h *KYCHandler) Approve(c echo.Context) error {
	return h.decide(c, model.KYCApproved, nil)
}

// Reject records the rejection and its reason.
func (h *KYCHandler) Reject(c echo.Context) error {
	var req rejectReq
	_ = c.Bind(&req)
	var notes *string
	if r := strings.TrimSpace(req.Reason); r != "" {
		notes = &r
	}
	return h.decide(c, model.KYCRejected, notes)
}

func (h *KYCHandler) decide(c echo.Context, status string, notes *string) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if u.Role != model.RoleLawyer {
		return fail(c, h.Log, errKYCLawyersOnly)
	}
	u, err = h.Users.SetKYC(ctx, id, status, notes)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.Log.Info("kyc decided",
		zap.Uint64("user_id", id), zap.String("kyc_status", status),
		zap.Bool("is_approved", u.IsApproved), zap.Uint64("admin_id", actor.ID))
	return c.JSON(http.StatusOK, kycJSON(u))
}

// ListLawyers returns lawyers filtered by ?kyc_status (default pending).
func (h *KYCHandler) ListLawyers(c echo.Context) error {
	status := c.QueryParam("kyc_status")
	switch status {
	case "":
		status = model.KYCPending
	case model.KYCNotSubmitted, model.KYCPending, model.KYCApproved, model.KYCRejected:
	default:
		return badRequest(c, "unknown kyc_status")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.ListLawyersByKYC(ctx, status)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Deactivate blocks an account from logging in and from being booked.
func (h *KYCHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }

// Reactivate undoes Deactivate.
func (h *KYCHandler) Reactivate(c echo.Context) error { return h.setActive(c, true) }

func (h *KYCHandler) setActive(c echo.Context, active bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.SetActive(ctx, id, active); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}
