// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "wizard-server"

// Verifier checks HS256 player tokens. A Verifier with an empty secret
// accepts every connection.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether tokens are checked at all.
func (v *Verifier) Enabled() bool { return len(v.secret) > 0 }

// IssueToken signs a token whose subject is playerID.
func (v *Verifier) IssueToken(playerID string, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   playerID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ParsePlayerToken verifies tokenStr and returns its subject.
func (v *Verifier) ParsePlayerToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Authorize checks that tokenStr grants access to playerID. It always
// succeeds when the verifier is disabled.
func (v *Verifier) Authorize(tokenStr, playerID string) error {
	if !v.Enabled() {
		return nil
	}
	sub, err := v.ParsePlayerToken(tokenStr)
	if err != nil {
		return err
	}
	if sub != playerID {
		return fmt.Errorf("%w: token is for %s, not %s", ErrInvalidToken, sub, playerID)
	}
	return nil
}
