package handler // handler defines http handlers

import (
	"errors" // errors provides sentinel values used in getUserID

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/booking-platform/internal/model" // model holds role constants
)

// getUserID extracts the caller's UUID from echo.Context.  JWTAuth
// stores the token's sub claim under "user_id"; anything other than a
// non-empty string means the request was not authenticated properly.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated caller carries the ADMIN
// role claim.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}
