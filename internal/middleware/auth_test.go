// AngelaMos | 2026
// auth_test.go

package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

type stubVerifier struct {
	sessions map[string]*middleware.Session
	err      error
}

func (v *stubVerifier) VerifyToken(
	_ context.Context,
	token string,
	requiredRole string,
) (*middleware.Session, error) {
	if v.err != nil {
		return nil, v.err
	}
	s, ok := v.sessions[token]
	if !ok {
		return nil, fmt.Errorf("verify: %w", core.ErrTokenInvalid)
	}
	if requiredRole != "" && s.Role != requiredRole {
		return nil, fmt.Errorf("verify: %w", core.ErrForbidden)
	}
	return s, nil
}

func newVerifier() *stubVerifier {
	return &stubVerifier{sessions: map[string]*middleware.Session{
		"user-token":  {UserID: "u1", Username: "alice", Role: middleware.RoleUser},
		"admin-token": {UserID: "a1", Username: "root", Role: middleware.RoleAdmin},
	}}
}

func echoSession(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())
	if s == nil {
		core.OK(w, map[string]string{"user_id": ""})
		return
	}
	core.OK(w, map[string]string{"user_id": s.UserID})
}

func call(t *testing.T, h http.Handler, token string) (int, core.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestAuthenticator(t *testing.T) {
	h := middleware.Authenticator(newVerifier())(http.HandlerFunc(echoSession))

	code, resp := call(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, core.CodeUnauthorized, resp.Code)

	code, resp = call(t, h, "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, core.CodeTokenInvalid, resp.Code)

	code, resp = call(t, h, "user-token")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"user_id": "u1"}, resp.Data)
}

func TestAuthenticatorMapsVerifierErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrTokenExpired, http.StatusUnauthorized, core.CodeTokenExpired},
		{core.ErrTokenRevoked, http.StatusUnauthorized, core.CodeTokenRevoked},
		{core.UnauthorizedError("account disabled"), http.StatusUnauthorized, core.CodeUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			v := &stubVerifier{err: fmt.Errorf("verify: %w", tc.err)}
			h := middleware.Authenticator(v)(http.HandlerFunc(echoSession))

			code, resp := call(t, h, "any")
			assert.Equal(t, tc.status, code)
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestAuthenticatorWithRole(t *testing.T) {
	h := middleware.AuthenticatorWithRole(newVerifier(), middleware.RoleAdmin)(
		http.HandlerFunc(echoSession),
	)

	code, resp := call(t, h, "user-token")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, core.CodeForbidden, resp.Code)

	code, _ = call(t, h, "admin-token")
	assert.Equal(t, http.StatusOK, code)
}

func TestOptionalAuth(t *testing.T) {
	h := middleware.OptionalAuth(newVerifier())(http.HandlerFunc(echoSession))

	code, resp := call(t, h, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"user_id": ""}, resp.Data)

	code, resp = call(t, h, "garbage")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"user_id": ""}, resp.Data)

	_, resp = call(t, h, "user-token")
	assert.Equal(t, map[string]any{"user_id": "u1"}, resp.Data)
}

func TestRequireCapability(t *testing.T) {
	v := newVerifier()
	h := middleware.Authenticator(v)(
		middleware.RequireCapability(middleware.CapPlatformStats)(
			http.HandlerFunc(echoSession),
		),
	)

	code, _ := call(t, h, "user-token")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, h, "admin-token")
	assert.Equal(t, http.StatusOK, code)

	bare := middleware.RequireCapability(middleware.CapPlatformStats)(
		http.HandlerFunc(echoSession),
	)
	code, _ = call(t, bare, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSessionCapabilities(t *testing.T) {
	user := &middleware.Session{Role: middleware.RoleUser}
	admin := &middleware.Session{Role: middleware.RoleAdmin}
	var none *middleware.Session

	assert.False(t, user.Can(middleware.CapModerateContent))
	assert.True(t, admin.Can(middleware.CapModerateContent))
	assert.True(t, admin.Can(middleware.CapManageUsers))
	assert.False(t, none.Can(middleware.CapPlatformStats))
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}

	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, middleware.ExtractToken(req), header)
	}
}
