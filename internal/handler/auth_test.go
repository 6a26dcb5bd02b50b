package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-platform/internal/config"
	"github.com/iliyamo/booking-platform/internal/model"
	"github.com/iliyamo/booking-platform/internal/repository"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func postRefresh(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Refresh(e.NewContext(req, rec)))
	return rec
}

// Rotation is all-or-nothing: when the old token cannot be revoked the
// refresh fails instead of leaving two live tokens.
func TestRefreshFailsWhenRevokeFails(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("user-1", time.Now().UTC().Add(24*time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WillReturnError(errors.New("driver: bad connection"))

	rec := postRefresh(t, h, `{"refresh_token":"raw-token"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRotatesToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("user-1", now.Add(24*time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id,name,email,password_hash,role,created_at,updated_at FROM users").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow("user-1", "Dana", "dana@example.com", "hash", model.RoleUser, now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postRefresh(t, h, `{"refresh_token":"raw-token"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")
	assert.Contains(t, rec.Body.String(), "refresh_token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("user-1", now.Add(24*time.Hour), now.Add(-time.Minute)))

	rec := postRefresh(t, h, `{"refresh_token":"raw-token"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
