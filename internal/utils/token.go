package utils // package utils provides helpers for session tokens, hashing and cookies

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed structure or expired token. Callers surface a single generic
// authentication error so clients cannot probe why a token was rejected.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken represents a signed session JWT along with its expiry.
// The token is carried in an HTTP-only cookie and proves a prior login
// until it expires or the user's invalidation marker moves past IssuedAt.
type SessionToken struct {
	Token    string    // the serialized JWT string
	IssuedAt time.Time // UTC issue time, mirrored in the iat claim
	Exp      time.Time // UTC expiration time
}

// SessionClaims are the decoded claims of a verified session token.
type SessionClaims struct {
	UserID   uint64
	IssuedAt time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a user. The JWT carries
// the standard claims sub, iat and exp; role and display data are looked up
// fresh on every request rather than frozen into the token.
func NewSessionToken(secret string, userID uint64, ttlDays int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, IssuedAt: now, Exp: exp}, nil
}

// VerifySessionToken checks signature and expiry and returns the decoded
// claims. Any failure collapses into ErrInvalidToken.
func VerifySessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with a different algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JWT numbers decode as float64
	if !ok || sub <= 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{
		UserID:   uint64(sub),
		IssuedAt: time.Unix(int64(iat), 0).UTC(),
	}, nil
}

// SessionStillValid applies the invalidation marker check: a token is only
// honored when the user's password has not changed since it was issued.
// Marker times are compared at second precision because iat is in seconds.
func SessionStillValid(claims SessionClaims, passwordChangedAt *time.Time) bool {
	if passwordChangedAt == nil {
		return true
	}
	return passwordChangedAt.Unix() <= claims.IssuedAt.Unix()
}
