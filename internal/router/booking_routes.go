package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/handler"
	"github.com/iliyamo/booking-platform/internal/middleware"
)

// RegisterBookings registers the booking endpoints under /v1.  Every
// route requires a valid JWT; ownership and role checks beyond that
// happen inside the handlers, where non-owners get 404 rather than 403
// on reads.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)
	g.POST("", b.Create)
	g.GET("", b.List)
	g.GET("/:id", b.Get)
	// PATCH carries status transitions and reschedules.
	g.PATCH("/:id", b.Update)
	g.DELETE("/:id", b.Delete)
}
