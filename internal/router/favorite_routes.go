package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
)

// RegisterFavorites registers saved lawyers for any signed-in user under
// /api/favorites and its Spanish alias /api/favoritos.
func RegisterFavorites(e *echo.Echo, f *handler.FavoriteHandler, jwtSecret string) {
	for _, prefix := range []string{"/api/favorites", "/api/favoritos"} {
		g := e.Group(prefix, middleware.JWTAuth(jwtSecret))
		g.GET("", f.List)
		g.GET("/ids", f.IDs)
		g.POST("/:lawyer_id", f.Add)
		g.DELETE("/:lawyer_id", f.Remove)
	}
}
