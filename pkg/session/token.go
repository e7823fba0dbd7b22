// Package session issues and verifies the HS256 session tokens handed out
// at login. The raw token doubles as the bearer credential forwarded to the
// garage backend, so collaborator calls never read ambient session state.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque bearer credential attached to every backend
// call on behalf of a signed-in user.
type Credential string

type Claims struct {
	jwt.RegisteredClaims
}

// Verified is a successfully validated session.
type Verified struct {
	Username   string
	Credential Credential
	ExpiresAt  time.Time
}

// IssueToken signs a session token for username, valid from now for ttl.
func IssueToken(username, secret string, now time.Time, ttl time.Duration) (string, error) {
	if username == "" {
		return "", fmt.Errorf("missing username")
	}
	if secret == "" {
		return "", fmt.Errorf("missing session secret")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken validates a session token (HS256) and returns the username it
// was issued to, together with the raw token as the backend credential.
func VerifyToken(tokenString, secret string, now time.Time) (*Verified, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	return &Verified{
		Username:   claims.Subject,
		Credential: Credential(tokenString),
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
