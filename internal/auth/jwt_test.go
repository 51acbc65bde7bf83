package auth

import (
	"testing"
	"time"

	"datadesk/domain/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef-test-secret")

func TestTokenRoundTrip(t *testing.T) {
	id := core.NewID()
	tok, err := GenerateToken(secret, id, "ann@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, tok)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	id := core.NewID()

	expired, err := GenerateToken(secret, id, "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := GenerateToken([]byte("another-secret-of-length"), id, "", time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}})
	noExpTok, err := noExp.SignedString(secret)
	require.NoError(t, err)

	badSub := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	badSubTok, err := badSub.SignedString(secret)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   wrongKey,
		"alg none":    unsigned,
		"no expiry":   noExpTok,
		"bad subject": badSubTok,
		"garbage":     "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateToken(secret, tok)
			assert.Error(t, err)
		})
	}
}

func TestGenerateTokenShortSecret(t *testing.T) {
	_, err := GenerateToken([]byte("short"), core.NewID(), "", time.Hour)
	assert.Error(t, err)

	_, err = GenerateToken(secret, "not-a-uuid", "", time.Hour)
	assert.Error(t, err)
}
