package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinylfunders/vf-presale-engine/internal/api/middleware"
)

// newTestKeyPair generates an RSA key pair, returning the private key and the
// public key in PEM form as configuration expects it
func newTestKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	return privateKey, string(publicPEM)
}

func signTestToken(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthenticateJWT(t *testing.T) {
	privateKey, publicPEM := newTestKeyPair(t)
	cfg := middleware.AuthConfig{JWTPublicKey: publicPEM}

	t.Run("valid token", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, middleware.Claims{
			Scope: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin@vinylfunders.test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.True(t, result.Success)
		assert.Equal(t, "jwt", result.AuthType)
		assert.Equal(t, "admin@vinylfunders.test", result.AuthSubject)
	})

	t.Run("admin among several scopes", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, middleware.Claims{
			Scope: "campaigns:read admin reports:read",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.True(t, result.Success)
	})

	t.Run("validly signed token without admin scope", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, middleware.Claims{
			Scope: "campaigns:read",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "buyer@example.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.False(t, result.Success)
		assert.ErrorContains(t, result.Error, "scope")
	})

	t.Run("token with no scope claim", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, jwt.RegisteredClaims{
			Subject:   "buyer@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.False(t, result.Success)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, middleware.Claims{
			Scope: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin@vinylfunders.test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.False(t, result.Success)
		assert.Error(t, result.Error)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		otherKey, _ := newTestKeyPair(t)
		tokenString := signTestToken(t, otherKey, middleware.Claims{
			Scope: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, cfg)
		assert.False(t, result.Success)
	})

	t.Run("no public key configured", func(t *testing.T) {
		tokenString := signTestToken(t, privateKey, middleware.Claims{
			Scope: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		result := middleware.Authenticate("Bearer "+tokenString, middleware.AuthConfig{})
		assert.False(t, result.Success)
	})
}

func TestAuthenticateAPIKey(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"key1", "key2"}}

	t.Run("valid key", func(t *testing.T) {
		result := middleware.Authenticate("APIKey key1", cfg)
		assert.True(t, result.Success)
		assert.Equal(t, "apikey", result.AuthType)
	})

	t.Run("invalid key", func(t *testing.T) {
		result := middleware.Authenticate("APIKey wrong", cfg)
		assert.False(t, result.Success)
	})

	t.Run("no keys configured", func(t *testing.T) {
		result := middleware.Authenticate("APIKey key1", middleware.AuthConfig{})
		assert.False(t, result.Success)
	})
}

func TestAuthenticateHeaderParsing(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"key1"}}

	t.Run("missing header", func(t *testing.T) {
		result := middleware.Authenticate("", cfg)
		assert.False(t, result.Success)
		assert.Error(t, result.Error)
	})

	t.Run("malformed header", func(t *testing.T) {
		result := middleware.Authenticate("just-a-token", cfg)
		assert.False(t, result.Success)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		result := middleware.Authenticate("Basic dXNlcjpwYXNz", cfg)
		assert.False(t, result.Success)
	})
}
