// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
)

// RegisterRoutes registers the unauthenticated probes.  /readyz also pings
// the database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers authentication routes.  Register, login and
// refresh live under /api/auth without a session; logout and /api/me need
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	jwt := middleware.JWTAuth(jwtSecret)
	e.POST("/api/auth/logout", a.Logout, jwt)
	e.GET("/api/me", a.Me, jwt)
}

// RegisterPublic registers guest endpoints for browsing lawyers.  Profiles
// and search results go through the response cache.  Availability and
// reviews are read live since bookings and new reviews change them.
func RegisterPublic(e *echo.Echo, l *handler.LawyerHandler, r *handler.ReviewHandler, cache echo.MiddlewareFunc) {
	e.GET("/api/abogado/perfil/:id", l.PublicProfile, cache)
	e.GET("/api/abogado/availability/:id", l.PublicAvailability)
	e.GET("/api/abogados/:especialidad", l.Search, cache)
	e.GET("/api/lawyers/:id/reviews", r.List)
	e.GET("/api/lawyers/:id/reviews/summary", r.Summary)
}
