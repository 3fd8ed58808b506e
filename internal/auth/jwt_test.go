// AngelaMos | 2026
// jwt_test.go

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

func testJWTConfig(t *testing.T) config.JWTConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:     filepath.Join(dir, "private.pem"),
		PublicKeyPath:      filepath.Join(dir, "public.pem"),
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 168 * time.Hour,
		Issuer:             "social-backend",
		Audience:           "social-backend-api",
	}
	require.NoError(t, auth.GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))
	return cfg
}

func newTestJWT(t *testing.T) *auth.JWTManager {
	t.Helper()
	m, err := auth.NewJWTManager(testJWTConfig(t))
	require.NoError(t, err)
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT(t)

	signed, err := m.CreateAccessToken(auth.AccessTokenClaims{
		UserID:       "user-1",
		Username:     "alice",
		Role:         "user",
		TokenVersion: 3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, signed.TokenID)

	claims, err := m.VerifyAccessToken(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, signed.TokenID, claims.TokenID)
	assert.WithinDuration(t, signed.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestExpiredAccessToken(t *testing.T) {
	cfg := testJWTConfig(t)
	cfg.AccessTokenExpire = -time.Minute
	m, err := auth.NewJWTManager(cfg)
	require.NoError(t, err)

	signed, err := m.CreateAccessToken(auth.AccessTokenClaims{UserID: "u"})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(signed.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestAccessTokenFromOtherKeyIsInvalid(t *testing.T) {
	a := newTestJWT(t)
	b := newTestJWT(t)

	signed, err := a.CreateAccessToken(auth.AccessTokenClaims{UserID: "u"})
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(signed.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = a.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestKeyIDIsStableForSameKey(t *testing.T) {
	cfg := testJWTConfig(t)

	first, err := auth.NewJWTManager(cfg)
	require.NoError(t, err)
	second, err := auth.NewJWTManager(cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, first.GetKeyID())
	assert.Equal(t, first.GetKeyID(), second.GetKeyID())
}

func TestJWKSHandler(t *testing.T) {
	m := newTestJWT(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Keys, 1)
	assert.Equal(t, "EC", body.Keys[0]["kty"])
	assert.Equal(t, m.GetKeyID(), body.Keys[0]["kid"])
	assert.NotContains(t, body.Keys[0], "d")
}

func TestCreateRefreshTokenKeepsFamily(t *testing.T) {
	m := newTestJWT(t)

	fresh, err := m.CreateRefreshToken("")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.FamilyID)
	assert.Equal(t, core.HashToken(fresh.Token), fresh.Hash)

	rotated, err := m.CreateRefreshToken(fresh.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, fresh.FamilyID, rotated.FamilyID)
	assert.NotEqual(t, fresh.Token, rotated.Token)
}
