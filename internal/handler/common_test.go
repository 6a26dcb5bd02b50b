package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-platform/internal/model"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	c := newTestContext(t)
	c.Set("user_id", "5d4f2c3b-9e8a-4b7c-8d6e-1a2b3c4d5e6f")

	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, "5d4f2c3b-9e8a-4b7c-8d6e-1a2b3c4d5e6f", id)
}

func TestGetUserIDMissingOrInvalid(t *testing.T) {
	c := newTestContext(t)
	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", "")
	_, err = getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", 123)
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	c := newTestContext(t)
	assert.False(t, isAdmin(c))

	c.Set("role", model.RoleUser)
	assert.False(t, isAdmin(c))

	c.Set("role", model.RoleAdmin)
	assert.True(t, isAdmin(c))
}

func TestHealth(t *testing.T) {
	c := newTestContext(t)
	require.NoError(t, Health(c))
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	assert.Equal(t, http.StatusOK, rec.Code)
}
