package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	jwt.StandardClaims
	SessionID string `json:"sid"`
}

// GetToken signs a session id into an HS256 token that expires after ttl.
func GetToken(sessionID string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := sessionClaims{
		StandardClaims: jwt.StandardClaims{ //nolint:exhaustruct
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		SessionID: sessionID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signed string error: %w", err)
	}

	return token, nil
}

// ValidateToken checks signature and expiry and returns the session id.
func ValidateToken(token, secret string) (string, error) {
	var claims sessionClaims

	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !t.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}
