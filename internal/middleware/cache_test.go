package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndikat/teamliste/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"items":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	for _, bs := range [][]byte{
		nil,
		{1, 2, 3},
		{0, 0, 0, 200, 0, 0, 0, 99}, // header length past the end
	} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}

func TestCacheKeyFrom(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "teamliste:cache"}

	key := func(path, query string) string {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, path+"?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return cacheKeyFrom(cfg, c)
	}

	a := key("/v1/team", "")
	b := key("/v1/team", "foo=1")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, key("/v1/team", ""))
	assert.Contains(t, a, "teamliste:cache:")
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/team", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "live")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "live", rec.Body.String())
	// Disabled cache adds no headers at all.
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
