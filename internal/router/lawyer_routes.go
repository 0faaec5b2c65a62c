package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
	"github.com/MathiAviles/abogapp/internal/model"
)

// RegisterLawyer registers the abogado-scoped profile, availability and
// KYC endpoints.
func RegisterLawyer(e *echo.Echo, l *handler.LawyerHandler, k *handler.KYCHandler, jwtSecret string) {
	g := e.Group(
		"/api/lawyer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleLawyer),
	)
	g.GET("/profile", l.GetProfile)
	g.PUT("/profile", l.UpdateProfile)
	g.GET("/availability", l.MyAvailability)
	g.POST("/availability", l.PublishAvailability)

	kyc := e.Group("/api/kyc", middleware.JWTAuth(jwtSecret))
	kyc.GET("/status", k.Status)
	kyc.POST("/submit", k.Submit, middleware.RequireRole(model.RoleLawyer))
}
