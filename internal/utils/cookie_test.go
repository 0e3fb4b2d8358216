package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionCookieAttributes(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		forwarded string
		wantSame  http.SameSite
		wantSec   bool
	}{
		{name: "localhost", host: "localhost:8080", wantSame: http.SameSiteLaxMode, wantSec: false},
		{name: "loopback ip", host: "127.0.0.1:8080", wantSame: http.SameSiteLaxMode, wantSec: false},
		{name: "ipv6 loopback", host: "[::1]:8080", wantSame: http.SameSiteLaxMode, wantSec: false},
		{name: "ip literal", host: "192.168.1.50:3000", wantSame: http.SameSiteLaxMode, wantSec: false},
		{name: "plain http host", host: "team.example.com", wantSame: http.SameSiteNoneMode, wantSec: false},
		{name: "https via proxy", host: "team.example.com", forwarded: "https", wantSame: http.SameSiteNoneMode, wantSec: true},
		{name: "proxy chain", host: "team.example.com", forwarded: "https, http", wantSame: http.SameSiteNoneMode, wantSec: true},
		{name: "http via proxy", host: "team.example.com", forwarded: "http", wantSame: http.SameSiteNoneMode, wantSec: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}

			c := SessionCookie(req, SessionCookieName, "tok", 3600)

			assert.Equal(t, SessionCookieName, c.Name)
			assert.Equal(t, "tok", c.Value)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, 3600, c.MaxAge)
			assert.Equal(t, tt.wantSame, c.SameSite)
			assert.Equal(t, tt.wantSec, c.Secure)
		})
	}
}

func TestSessionCookieExpiry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost:8080"

	c := SessionCookie(req, SessionCookieName, "", -1)
	assert.Equal(t, -1, c.MaxAge, "logout cookie must expire immediately")
	assert.Empty(t, c.Value)
}
