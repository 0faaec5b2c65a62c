package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/apperr"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
)

// FavoriteStore keeps the lawyers a user has saved.
type FavoriteStore interface {
	Add(ctx context.Context, userID, lawyerID uint64) error
	Remove(ctx context.Context, userID, lawyerID uint64) error
	LawyerIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// FavoriteUsers resolves saved lawyers.
type FavoriteUsers interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UserBatch
}

// FavoriteHandler serves a signed-in user's saved lawyers.
type FavoriteHandler struct {
	Favorites FavoriteStore
	Users     FavoriteUsers
	Log       *zap.Logger
}

func NewFavoriteHandler(f FavoriteStore, u FavoriteUsers, log *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{Favorites: f, Users: u, Log: log}
}

var (
	errFavoriteNotLawyer = apperr.New(apperr.NotFound, "LAWYER_NOT_FOUND", "lawyer not found")
	errFavoriteSelf      = apperr.New(apperr.Validation, "", "cannot save yourself")
)

// IDs returns the saved lawyer ids.
func (h *FavoriteHandler) IDs(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ids, err := h.Favorites.LawyerIDs(ctx, actor.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ids": ids})
}

// List returns the saved lawyers' public profiles in the order they were
// saved.  Lawyers whose accounts are gone are skipped.
func (h *FavoriteHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ids, err := h.Favorites.LawyerIDs(ctx, actor.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]echo.Map, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, publicLawyerJSON(u))
		}
	}
	return c.JSON(http.StatusOK, out)
}

// Add saves a lawyer.  Saving one twice is not an error.
func (h *FavoriteHandler) Add(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	lawyerID, ok := pathID(c, "lawyer_id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	target, err := h.Users.GetByID(ctx, lawyerID)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && target.Role != model.RoleLawyer) {
		return fail(c, h.Log, errFavoriteNotLawyer)
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	if lawyerID == actor.ID {
		return fail(c, h.Log, errFavoriteSelf)
	}
	if err := h.Favorites.Add(ctx, actor.ID, lawyerID); err != nil && !errors.Is(err, repository.ErrConflict) {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true})
}

// Remove forgets a saved lawyer.  Removing one that was never saved is
// not an error.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	lawyerID, ok := pathID(c, "lawyer_id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Favorites.Remove(ctx, actor.ID, lawyerID); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
