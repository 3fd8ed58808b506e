// AngelaMos | 2026
// handler_test.go

package notification_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
)

// headerAuth trusts X-User-ID so routes can be exercised without tokens.
func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			core.Unauthorized(w, "")
			return
		}
		ctx := middleware.WithSession(r.Context(), &middleware.Session{
			UserID: id,
			Role:   middleware.RoleUser,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRouter(repo *memRepo) http.Handler {
	r := chi.NewRouter()
	notification.NewHandler(notification.NewService(repo, nil)).
		RegisterRoutes(r, headerAuth)
	return r
}

func send(t *testing.T, h http.Handler, method, path, userID string, body any) (int, core.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp core.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func seed(repo *memRepo, recipient string, n int) {
	svc := notification.NewService(repo, nil)
	for range n {
		svc.Notify(context.Background(), notification.Event{
			RecipientID: recipient,
			SenderID:    "alice",
			Type:        notification.TypeFollow,
			Message:     "@alice started following you",
		})
	}
}

func TestListNotificationsEndpoint(t *testing.T) {
	repo := &memRepo{}
	seed(repo, "bob", 3)
	seed(repo, "carol", 1)
	h := newRouter(repo)

	code, resp := send(t, h, http.MethodGet, "/notifications?limit=2", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Len(t, resp.Data, 2)

	code, _ = send(t, h, http.MethodGet, "/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestNotificationActions(t *testing.T) {
	repo := &memRepo{}
	seed(repo, "bob", 2)
	h := newRouter(repo)

	code, resp := send(t, h, http.MethodPost, "/notifications", "bob",
		map[string]string{"action": "mark-read", "notification_id": repo.items[0].ID})
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, resp = send(t, h, http.MethodGet, "/notifications/unread-count", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["unread_count"])

	code, _ = send(t, h, http.MethodPost, "/notifications", "bob",
		map[string]string{"action": "mark-all-read"})
	require.Equal(t, http.StatusOK, code)

	code, resp = send(t, h, http.MethodGet, "/notifications?unread=true", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, resp.Pagination.Total)
}

func TestNotificationActionErrors(t *testing.T) {
	repo := &memRepo{}
	seed(repo, "bob", 1)
	h := newRouter(repo)

	code, resp := send(t, h, http.MethodPost, "/notifications", "bob",
		map[string]string{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid action", resp.Error)

	code, _ = send(t, h, http.MethodPost, "/notifications", "bob",
		map[string]string{"action": "mark-read"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = send(t, h, http.MethodPost, "/notifications", "carol",
		map[string]string{"action": "mark-read", "notification_id": repo.items[0].ID})
	assert.Equal(t, http.StatusNotFound, code)
}
