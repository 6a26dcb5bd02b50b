package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-platform/internal/utils"
)

const testSecret = "unit-test-secret"

// invoke runs a request with the given Authorization header through
// JWTAuth in front of a handler that echoes the extracted claims.
func invoke(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser, gotRole string
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		gotUser, _ = c.Get("user_id").(string)
		gotRole, _ = c.Get("role").(string)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, gotUser, gotRole
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, "user-123", "ADMIN", 15)
	require.NoError(t, err)

	rec, userID, role := invoke(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, "ADMIN", role)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _, _ := invoke(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	rec, _, _ := invoke(t, "Token abc.def.ghi")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("a-different-secret", "user-123", "USER", 15)
	require.NoError(t, err)

	rec, _, _ := invoke(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, "user-123", "USER", -5)
	require.NoError(t, err)

	rec, _, _ := invoke(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     interface{}
		allowed  []string
		wantCode int
	}{
		{name: "role allowed", role: "ADMIN", allowed: []string{"ADMIN"}, wantCode: http.StatusOK},
		{name: "one of several", role: "USER", allowed: []string{"USER", "ADMIN"}, wantCode: http.StatusOK},
		{name: "role not allowed", role: "USER", allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
		{name: "missing role", role: nil, allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
		{name: "non-string role", role: 42, allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.role != nil {
				c.Set("role", tt.role)
			}

			h := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
