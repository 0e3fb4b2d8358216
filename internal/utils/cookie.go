package utils

import (
	"net"
	"net/http"
	"strings"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "teamliste_session"

// LegacyCookieName is the cookie set by the previous OAuth-based login.
// Logout clears it as well so stale sessions from the old scheme die too.
const LegacyCookieName = "oauth_session"

var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// isLocalHostname reports whether the request targets a development host:
// a known loopback name or any raw IP literal.
func isLocalHostname(host string) bool {
	if localHosts[host] {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	return false
}

// isSecureRequest reports whether the request arrived over HTTPS, either
// directly or via a proxy that set X-Forwarded-Proto.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		return false
	}
	for _, p := range strings.Split(proto, ",") {
		if strings.EqualFold(strings.TrimSpace(p), "https") {
			return true
		}
	}
	return false
}

// SessionCookie builds the session cookie for the given request. Local
// development hosts get SameSite=Lax without the Secure flag so the cookie
// works over plain HTTP; everywhere else the cookie is cross-site capable
// (SameSite=None) and Secure whenever the request came in over HTTPS.
// maxAge follows http.Cookie semantics: positive values expire the cookie
// after that many seconds, negative values delete it immediately.
func SessionCookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	host := r.Host
	if h, _, err := net.SplitHostPort(r.Host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]") // bare IPv6 literals keep their brackets
	local := isLocalHostname(host)

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
	}
	if local {
		c.SameSite = http.SameSiteLaxMode
		c.Secure = false
	} else {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = isSecureRequest(r)
	}
	return c
}
