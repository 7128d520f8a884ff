package clerkauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/credits-service/internal/clerkauth"
)

const testKeyID = "ins_test_key"

// newJWKSServer поднимает httptest-сервер, раздающий JWKS с публичной частью ключа.
func newJWKSServer(t *testing.T, priv *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	key, err := jwk.FromRaw(priv.Public())
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, "RS256"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))

	body, err := json.Marshal(set)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, priv *rsa.PrivateKey, kid, sub, email string, exp time.Time) string {
	t.Helper()

	claims := clerkauth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func TestNew_EmptyDomain(t *testing.T) {
	_, err := clerkauth.New(context.Background(), "")
	assert.ErrorIs(t, err, clerkauth.ErrClientUnavailable)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, priv)

	verifier, err := clerkauth.New(ctx, srv.URL)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, priv, testKeyID, "user_123", "user@example.com", time.Now().Add(time.Hour))

		claims, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user_123", claims.Subject)
		assert.Equal(t, "user@example.com", claims.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, priv, testKeyID, "user_123", "user@example.com", time.Now().Add(-time.Hour))

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, clerkauth.ErrTokenExpired)
	})

	t.Run("token signed by foreign key", func(t *testing.T) {
		token := signToken(t, otherPriv, testKeyID, "user_123", "user@example.com", time.Now().Add(time.Hour))

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, clerkauth.ErrTokenInvalid)
	})

	t.Run("unknown key id", func(t *testing.T) {
		token := signToken(t, priv, "ins_other_key", "user_123", "user@example.com", time.Now().Add(time.Hour))

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, clerkauth.ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, clerkauth.ErrTokenInvalid)
	})

	t.Run("hmac token is rejected", func(t *testing.T) {
		hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user_123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		hs.Header["kid"] = testKeyID
		token, err := hs.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, clerkauth.ErrTokenInvalid)
	})
}

func TestVerify_JWKSUnavailable(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	verifier, err := clerkauth.New(ctx, srv.URL)
	require.NoError(t, err)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := signToken(t, priv, testKeyID, "user_123", "user@example.com", time.Now().Add(time.Hour))

	_, err = verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, clerkauth.ErrClientUnavailable)
}
