package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/handler"
	"github.com/iliyamo/booking-platform/internal/middleware"
)

// RegisterReviews registers the review endpoints under /v1.  Reading a
// service's reviews is public and lives on the catalog router; writing
// requires authentication and a completed booking owned by the caller.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1/reviews",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)
	g.POST("", r.Create)
	g.PATCH("/:id", r.Update)
	g.DELETE("/:id", r.Delete)

	e.GET("/v1/my-reviews", r.Mine,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)
}
