package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/model"
	"github.com/iliyamo/booking-platform/internal/repository"
)

// ReviewHandler guards the review gate: only the owner of a COMPLETED
// booking may review it, once.
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Bookings *repository.BookingRepo
}

func NewReviewHandler(r *repository.ReviewRepo, b *repository.BookingRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Bookings: b}
}

type reviewResp struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResp(r *model.Review) reviewResp {
	return reviewResp{
		ID:        r.ID,
		BookingID: r.BookingID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

// mayEditReview reports whether the caller owns the booking behind the
// review or is an admin.  Unlike booking reads, the review was already
// located by id, so a non-owner gets a plain permission error.
func (h *ReviewHandler) mayEditReview(ctx context.Context, c echo.Context, bookingID, userID string) (bool, error) {
	if isAdmin(c) {
		return true, nil
	}
	b, err := h.Bookings.GetVisible(ctx, bookingID, userID, true)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			// orphaned review; nobody but admins may touch it
			return false, nil
		}
		return false, err
	}
	return b.UserID == userID, nil
}

// Create handles POST /v1/reviews with {booking_id, rating, comment}.
// Admission order: booking visible (404), status COMPLETED (422),
// not yet reviewed (409), rating in range (422).  The unique key on
// reviews.booking_id closes the window between the existence check and
// the insert.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookingID string `json:"booking_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The lookup is owner-scoped even for admins: only the booking's
	// owner may review it, and non-owners learn nothing.
	b, err := h.Bookings.GetVisible(ctx, body.BookingID, userID, false)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if b.Status != model.StatusCompleted {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "only completed bookings can be reviewed"})
	}
	exists, err := h.Reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already reviewed"})
	}
	if !validRating(body.Rating) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "rating must be between 1 and 5"})
	}

	rv := &model.Review{
		BookingID: b.ID,
		Rating:    body.Rating,
		Comment:   body.Comment,
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if err == repository.ErrReviewExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, toReviewResp(rv))
}

// Mine handles GET /v1/my-reviews: reviews the caller has written.
func (h *ReviewHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reviews.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]reviewResp, 0, len(items))
	for i := range items {
		out = append(out, toReviewResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /v1/reviews/:id.  Only the author (via the
// booking) or an admin may edit; rating re-validates when present.
func (h *ReviewHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Rating != nil && !validRating(*body.Rating) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	ok, err := h.mayEditReview(ctx, c, rv.BookingID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}

	rv, err = h.Reviews.Update(ctx, rv.ID, body.Rating, body.Comment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update review failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(rv))
}

// Delete handles DELETE /v1/reviews/:id with the same ownership gate
// as Update.
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	ok, err := h.mayEditReview(ctx, c, rv.BookingID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	}

	if err := h.Reviews.Delete(ctx, rv.ID); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
