// Package token issues and validates the JWT session tokens that track the
// client's current-user pointer.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the JWT claims used in the application.
type Claims struct {
	Identity string `json:"identity"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Manager signs and parses session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token Manager with the given signing secret and
// token lifetime.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Generate issues a JWT for the specified user identity.
func (m *Manager) Generate(identity string, isAdmin bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.ttl)

	claims := Claims{
		Identity: identity,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a JWT and returns its claims.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
