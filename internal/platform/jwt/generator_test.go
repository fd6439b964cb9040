package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	gen := NewGenerator("test-secret", time.Hour)

	signed, err := gen.GenerateToken(42, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	// Parse back and verify the claims
	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "alice@example.com", claims["email"])
}

func TestParseUserID(t *testing.T) {
	gen := NewGenerator("test-secret", time.Hour)

	t.Run("valid token", func(t *testing.T) {
		signed, err := gen.GenerateToken(7, "bob@example.com")
		require.NoError(t, err)

		id, err := ParseUserID(signed, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, uint(7), id)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed, err := gen.GenerateToken(7, "bob@example.com")
		require.NoError(t, err)

		_, err = ParseUserID(signed, "other-secret")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewGenerator("test-secret", -time.Minute)
		signed, err := expired.GenerateToken(7, "bob@example.com")
		require.NoError(t, err)

		_, err = ParseUserID(signed, "test-secret")
		assert.Error(t, err)
	})

	t.Run("non-HMAC algorithm rejected", func(t *testing.T) {
		// alg=none token
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 7.0})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseUserID(signed, "test-secret")
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseUserID("not.a.token", "test-secret")
		assert.Error(t, err)
	})
}
