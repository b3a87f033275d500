// internal/auth/token_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	v := NewVerifier("s3cret")
	tok, err := v.IssueToken("alice", time.Hour)
	require.NoError(t, err)

	sub, err := v.ParsePlayerToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	assert.NoError(t, v.Authorize(tok, "alice"))
	assert.ErrorIs(t, v.Authorize(tok, "bob"), ErrInvalidToken)
}

func TestParseRejectsBadTokens(t *testing.T) {
	v := NewVerifier("s3cret")

	other, err := NewVerifier("different").IssueToken("alice", time.Hour)
	require.NoError(t, err)
	_, err = v.ParsePlayerToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong signature")

	expired, err := v.IssueToken("alice", -time.Minute)
	require.NoError(t, err)
	_, err = v.ParsePlayerToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = v.ParsePlayerToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.ParsePlayerToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")
}

func TestDisabledVerifier(t *testing.T) {
	v := NewVerifier("")
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Authorize("", "anyone"))

	_, err := v.IssueToken("alice", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
