package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
	"github.com/MathiAviles/abogapp/internal/model"
)

// RegisterMeetings registers /api/meetings.  Any signed-in user may call
// these; participation and staff rights are checked per meeting by the
// lifecycle service.  Booking is limited to clients and sits behind its
// own rate limiter.
func RegisterMeetings(e *echo.Echo, h *handler.MeetingHandler, jwtSecret string, bookingLimit echo.MiddlewareFunc) {
	g := e.Group("/api/meetings", middleware.JWTAuth(jwtSecret))

	g.POST("", h.Create, middleware.RequireRole(model.RoleClient), bookingLimit)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/can-join", h.CanJoin)
	g.GET("/:id/join-info", h.JoinInfo)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.POST("/:id/presence/join", h.Join)
	g.POST("/:id/presence/leave", h.Leave)
	g.POST("/:id/finish", h.Finish)
}

// RegisterReviews registers review submission for clients.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/api/reviews",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient),
	)
	g.POST("", r.Create)
}
