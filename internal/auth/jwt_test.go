package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-identity-secret"

func TestTokenVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	verifier := NewTokenVerifier(testSecret, "arena-idp", "arena")

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "arena-idp", "arena", Identity{UID: "alice", Email: "alice@example.com", EmailVerified: true}, time.Hour)
		require.NoError(t, err)

		identity, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.UID)
		assert.Equal(t, "alice@example.com", identity.Email)
		assert.True(t, identity.EmailVerified)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "arena-idp", "arena", Identity{UID: "alice"}, -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("another-secret", "arena-idp", "arena", Identity{UID: "alice"}, time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer or audience", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "someone-else", "arena", Identity{UID: "alice"}, time.Hour)
		require.NoError(t, err)
		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		token, err = GenerateToken(testSecret, "arena-idp", "other-app", Identity{UID: "alice"}, time.Hour)
		require.NoError(t, err)
		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "arena-idp", "arena", Identity{}, time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", Issuer: "arena-idp", Audience: jwt.ClaimStrings{"arena"}}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		_, err := NewTokenVerifier("", "", "").Verify(ctx, "anything")
		assert.Error(t, err)
		_, err = GenerateToken("", "", "", Identity{UID: "alice"}, time.Hour)
		assert.Error(t, err)
	})
}
