package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/handler"
	"github.com/iliyamo/booking-platform/internal/middleware"
)

// RegisterCatalog registers the service catalog.  Browsing is public so
// guests can inspect offerings before signing up; mutations are grouped
// separately and require the ADMIN role.
func RegisterCatalog(e *echo.Echo, s *handler.ServiceHandler, jwtSecret string) {
	e.GET("/v1/services", s.List)
	e.GET("/v1/services/:id", s.Get)
	// Reviews attached to a service are public data.
	e.GET("/v1/services/:id/reviews", s.ListReviews)

	admin := e.Group(
		"/v1/services",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("", s.Create)
	admin.PATCH("/:id", s.Update)
	// Delete deactivates rather than removes; services with live
	// bookings are refused.
	admin.DELETE("/:id", s.Delete)
}
