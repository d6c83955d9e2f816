// Package auth issues and verifies bearer tokens. Access is gated by a
// single shared password; tokens carry a fixed subject, so any valid
// token can query any user_id. The user_id in requests is a partition
// key, not an identity claim.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Gatekeeper struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	subject  string
}

func NewGatekeeper(password, secret string, ttl time.Duration, subject string) *Gatekeeper {
	return &Gatekeeper{
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		subject:  subject,
	}
}

// Login checks the shared password and returns a signed token.
func (g *Gatekeeper) Login(password string, now time.Time) (token string, expiresAt time.Time, err error) {
	if subtle.ConstantTimeCompare(g.password, []byte(password)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt = now.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   g.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses the token and returns its subject.
func (g *Gatekeeper) Verify(token string) (subject string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
