package auth

import (
	"errors"
	"fmt"
	"time"

	"datadesk/domain/core"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest accepted HMAC secret
const MinSecretLen = 16

// Claims identifies the caller. Subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// UserID returns the subject as a validated ID
func (c *Claims) UserID() (core.ID, error) {
	return core.ParseID(c.Subject)
}

// GenerateToken signs a token for userID that expires after ttl
func GenerateToken(secret []byte, userID core.ID, email string, ttl time.Duration) (string, error) {
	if len(secret) < MinSecretLen {
		return "", fmt.Errorf("auth: secret must be at least %d bytes", MinSecretLen)
	}
	if _, err := core.ParseID(userID.String()); err != nil {
		return "", fmt.Errorf("auth: %w", err)
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses a token and returns its claims. Only HS256 is
// accepted and the expiry claim is required.
func ValidateToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v (only HS256 allowed)", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return claims, nil
}
