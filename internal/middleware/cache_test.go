package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-platform/internal/config"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": {"application/json"},
		"X-Custom":     {"a", "b"},
	}
	body := []byte(`{"id":"abc"}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)

	// header length pointing past the end of the buffer
	bs, err := encodePayload(http.StatusOK, http.Header{"A": {"b"}}, []byte("body"))
	require.NoError(t, err)
	_, _, _, ok = decodePayload(bs[:9])
	assert.False(t, ok)
}

func TestCacheKeyFromStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	e := echo.New()

	keyFor := func(cfg config.CacheConfig, target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/services")
		return cacheKeyFrom(cfg, c)
	}

	base := keyFor(cfg, "/v1/services?q=massage")
	assert.Contains(t, base, "cache:")

	// same route and query hash identically
	assert.Equal(t, base, keyFor(cfg, "/v1/services?q=massage"))
	// a different query changes the key
	assert.NotEqual(t, base, keyFor(cfg, "/v1/services?q=yoga"))

	// the plain route strategy ignores the query string
	routeCfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	assert.Equal(t, keyFor(routeCfg, "/v1/services?q=massage"), keyFor(routeCfg, "/v1/services?q=yoga"))
}

func TestNewRedisCacheDisabledPassesThrough(t *testing.T) {
	cfg := config.CacheConfig{Enabled: false}
	mw := NewRedisCache(cfg, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/services", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
