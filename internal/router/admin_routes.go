package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
	"github.com/MathiAviles/abogapp/internal/model"
)

// RegisterAdmin registers staff endpoints.  Backoffice users may read the
// KYC queue; decisions and account switches are admin only.  Staff roles
// are confirmed against the stored account on every request.
func RegisterAdmin(e *echo.Echo, k *handler.KYCHandler, users middleware.AccountLookup, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleBackoffice),
		middleware.RequireAccountRole(users, model.RoleAdmin, model.RoleBackoffice),
	)
	g.GET("/lawyers", k.ListLawyers)

	admin := middleware.RequireRole(model.RoleAdmin)
	g.POST("/users/:id/approve", k.Approve, admin)
	g.POST("/users/:id/reject", k.Reject, admin)
	g.POST("/users/:id/deactivate", k.Deactivate, admin)
	g.POST("/users/:id/reactivate", k.Reactivate, admin)
}
