package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 42, 7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := VerifySessionToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.WithinDuration(t, time.Now().UTC(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), tok.Exp, 5*time.Second)
}

func TestVerifySessionTokenFailures(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 1, 7)
	require.NoError(t, err)

	expired, err := NewSessionToken(testSecret, 1, -1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{name: "wrong secret", secret: "other-secret", raw: tok.Token},
		{name: "malformed token", secret: testSecret, raw: "not.a.jwt"},
		{name: "empty token", secret: testSecret, raw: ""},
		{name: "expired token", secret: testSecret, raw: expired.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifySessionToken(tt.secret, tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSessionStillValid(t *testing.T) {
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	claims := SessionClaims{UserID: 1, IssuedAt: issued}

	before := issued.Add(-time.Hour)
	same := issued
	after := issued.Add(time.Second)

	assert.True(t, SessionStillValid(claims, nil), "no marker means valid")
	assert.True(t, SessionStillValid(claims, &before), "marker before issue keeps token valid")
	assert.True(t, SessionStillValid(claims, &same), "marker at issue second keeps token valid")
	assert.False(t, SessionStillValid(claims, &after), "marker after issue invalidates token")
}
