package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/apperr"
	"github.com/MathiAviles/abogapp/internal/middleware"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/service"
)

// dbTimeout bounds the storage work of a single request.
const dbTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actorFrom returns the caller identified by JWTAuth.
func actorFrom(c echo.Context) (service.Actor, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: middleware.Role(c)}, true
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryInt parses an optional integer query parameter, returning def when
// it is absent.
func queryInt(c echo.Context, name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": string(apperr.Validation), "message": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "UNAUTHORIZED", "message": "authentication required"})
}

// fail writes err as {"error": CODE, "message": ...}.  Unclassified errors
// are logged and reported as a generic internal error.
func fail(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		err = apperr.New(apperr.NotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, repository.ErrMeetingNotFound):
		err = service.ErrMeetingNotFound
	case errors.Is(err, repository.ErrForbidden):
		err = apperr.New(apperr.Forbidden, "", "forbidden")
	case errors.Is(err, repository.ErrConflict):
		err = apperr.New(apperr.Conflict, "", "conflict")
	case errors.Is(err, context.DeadlineExceeded):
		err = apperr.WithStatus(apperr.Internal, "TIMEOUT", "request timed out", http.StatusGatewayTimeout)
	}
	e, ok := apperr.As(err)
	if !ok {
		log.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": string(apperr.Internal), "message": "internal error"})
	}
	code := e.Code
	if code == "" {
		code = string(e.Kind)
	}
	return c.JSON(apperr.HTTPStatus(e), echo.Map{"error": code, "message": e.Message})
}
