package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/booking"
	"github.com/iliyamo/booking-platform/internal/model"
	"github.com/iliyamo/booking-platform/internal/queue"
	"github.com/iliyamo/booking-platform/internal/repository"
	queue_publisher "github.com/iliyamo/booking-platform/internal/service"
)

// BookingHandler implements the admission engine's HTTP surface.  All
// methods assume that JWT authentication has already been performed by
// middleware.  Visibility rules: non-admin callers only ever see their
// own bookings; a booking owned by someone else is answered with 404,
// never 403, so existence is not leaked.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Services *repository.ServiceRepo
}

func NewBookingHandler(b *repository.BookingRepo, s *repository.ServiceRepo) *BookingHandler {
	return &BookingHandler{Bookings: b, Services: s}
}

type bookingResp struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ServiceID string    `json:"service_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:        b.ID,
		UserID:    b.UserID,
		ServiceID: b.ServiceID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

// publish sends a booking event to the broker; failures are logged by
// the publisher and deliberately do not affect the response.
func publish(eventType string, b *model.Booking) {
	ev := queue.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ServiceID:  b.ServiceID,
		StartTime:  b.StartTime.Format(time.RFC3339),
		EndTime:    b.EndTime.Format(time.RFC3339),
		Status:     b.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingEvent(ctx, ev)
	}()
}

// Create handles POST /v1/bookings.  Checks run in a fixed order:
// active service (404), window shape (422), conflict (409).  The
// conflict scan and the insert share one transaction inside the
// repository, so two overlapping concurrent requests cannot both
// succeed.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ServiceID string `json:"service_id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == "" || body.StartTime == "" || body.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id, start_time and end_time are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc, err := h.Services.GetActive(ctx, body.ServiceID)
	if err != nil {
		if err == repository.ErrServiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	start, err := booking.ParseTime(body.StartTime)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid start_time"})
	}
	end, err := booking.ParseTime(body.EndTime)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid end_time"})
	}
	if err := booking.ValidateWindow(start, end, time.Now().UTC(), svc.DurationMinutes); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	b := &model.Booking{
		UserID:    userID,
		ServiceID: svc.ID,
		StartTime: start,
		EndTime:   end,
	}
	if err := h.Bookings.CreateConflictFree(ctx, b); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflicts with existing reservation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	publish(queue.EventBookingCreated, b)
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// List handles GET /v1/bookings: everything for admins, own bookings
// for everyone else.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.List(ctx, userID, isAdmin(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]bookingResp, 0, len(items))
	for i := range items {
		out = append(out, toBookingResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetVisible(ctx, c.Param("id"), userID, isAdmin(c))
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Update handles PATCH /v1/bookings/:id.  The payload may carry a
// status change, a reschedule (either or both of start_time/end_time),
// or both.  Status changes are validated against the state machine;
// reschedules re-run the full admission validation with the booking's
// own row excluded from the conflict scan.
func (h *BookingHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
		Status    *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin := isAdmin(c)
	b, err := h.Bookings.GetVisible(ctx, c.Param("id"), userID, admin)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if b.UserID != userID && !admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}

	if body.Status != nil {
		if !booking.ValidStatus(*body.Status) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown status"})
		}
		if !booking.CanTransition(b.Status, *body.Status) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status transition"})
		}
	}

	// Reschedule: absent side retained from the stored row, then the
	// full creation validation re-runs.
	if body.StartTime != nil || body.EndTime != nil {
		if !booking.Blocks(b.Status) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "only pending or confirmed bookings can be rescheduled"})
		}
		start, end := b.StartTime, b.EndTime
		if body.StartTime != nil {
			if start, err = booking.ParseTime(*body.StartTime); err != nil {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid start_time"})
			}
		}
		if body.EndTime != nil {
			if end, err = booking.ParseTime(*body.EndTime); err != nil {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid end_time"})
			}
		}
		svc, err := h.Services.GetByID(ctx, b.ServiceID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		if err := booking.ValidateWindow(start, end, time.Now().UTC(), svc.DurationMinutes); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		b, err = h.Bookings.Reschedule(ctx, b.ID, b.ServiceID, start, end)
		if err != nil {
			switch err {
			case repository.ErrConflict:
				return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflicts with existing reservation"})
			case repository.ErrBookingNotFound:
				return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reschedule failed"})
		}
	}

	if body.Status != nil && *body.Status != b.Status {
		b, err = h.Bookings.UpdateStatus(ctx, b.ID, *body.Status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		publish(queue.EventBookingStatusChanged, b)
	}

	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Delete handles DELETE /v1/bookings/:id.  Hard delete with the same
// visibility gate as Get/Update.
func (h *BookingHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin := isAdmin(c)
	b, err := h.Bookings.GetVisible(ctx, c.Param("id"), userID, admin)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if b.UserID != userID && !admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}

	if err := h.Bookings.Delete(ctx, b.ID); err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
