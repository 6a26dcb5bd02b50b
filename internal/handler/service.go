package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-platform/internal/model"
	"github.com/iliyamo/booking-platform/internal/repository"
)

// ServiceHandler serves the public catalog and the admin-only catalog
// mutations.  Deactivation is the only delete: a service with booking
// history is never removed from the table.
type ServiceHandler struct {
	Services *repository.ServiceRepo
	Reviews  *repository.ReviewRepo
}

func NewServiceHandler(s *repository.ServiceRepo, r *repository.ReviewRepo) *ServiceHandler {
	return &ServiceHandler{Services: s, Reviews: r}
}

type serviceResp struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func toServiceResp(s *model.Service) serviceResp {
	return serviceResp{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
	}
}

// List handles GET /v1/services.  Query parameters: q (substring on
// title/description), price_min, price_max, active, skip, limit.
func (h *ServiceHandler) List(c echo.Context) error {
	var f repository.ServiceFilter
	f.Query = c.QueryParam("q")
	if v := c.QueryParam("price_min"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.PriceMin = &n
		}
	}
	if v := c.QueryParam("price_max"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.PriceMax = &n
		}
	}
	if v := c.QueryParam("active"); v != "" {
		b := strings.EqualFold(v, "true") || v == "1"
		f.Active = &b
	}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Services.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]serviceResp, 0, len(items))
	for i := range items {
		out = append(out, toServiceResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/services/:id.
func (h *ServiceHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Services.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrServiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toServiceResp(s))
}

// ListReviews handles GET /v1/services/:id/reviews.  Reviews are public
// data; no ownership filter applies.
func (h *ServiceHandler) ListReviews(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, c.Param("id")); err != nil {
		if err == repository.ErrServiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.Reviews.ListByService(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]reviewResp, 0, len(items))
	for i := range items {
		out = append(out, toReviewResp(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/services (ADMIN).
func (h *ServiceHandler) Create(c echo.Context) error {
	var body struct {
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		Price           float64 `json:"price"`
		DurationMinutes int     `json:"duration_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if body.Price <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "price must be greater than 0"})
	}
	if body.DurationMinutes <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "duration must be greater than 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := &model.Service{
		Title:           body.Title,
		Description:     body.Description,
		Price:           body.Price,
		DurationMinutes: body.DurationMinutes,
		IsActive:        true,
	}
	if err := h.Services.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, toServiceResp(s))
}

// Update handles PATCH /v1/services/:id (ADMIN).  Absent fields are
// retained; price and duration are re-validated when present.
func (h *ServiceHandler) Update(c echo.Context) error {
	var body struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price"`
		DurationMinutes *int     `json:"duration_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Price != nil && *body.Price <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "price must be greater than 0"})
	}
	if body.DurationMinutes != nil && *body.DurationMinutes <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "duration must be greater than 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, c.Param("id")); err != nil {
		if err == repository.ErrServiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s, err := h.Services.Update(ctx, c.Param("id"), body.Title, body.Description, body.Price, body.DurationMinutes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(s))
}

// Delete handles DELETE /v1/services/:id (ADMIN).  The service is
// deactivated, never removed; active bookings block deactivation.
func (h *ServiceHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Services.Deactivate(ctx, c.Param("id")); err != nil {
		switch err {
		case repository.ErrServiceNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "service has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
