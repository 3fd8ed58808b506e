// AngelaMos | 2026
// metrics_test.go

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.InstrumentHandler("/metrics"))
	r.Get("/posts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body),
		`social_http_requests_total{method="GET",route="/posts/{id}",status="418"} 3`)
	assert.NotContains(t, string(body), `route="/posts/a"`)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.CollectAndCount(metrics.Registry, "social_actions_total")

	metrics.RecordAction(metrics.ActionLike)
	metrics.RecordNotificationFailure("")

	assert.GreaterOrEqual(t,
		testutil.CollectAndCount(metrics.Registry, "social_actions_total"), before)

	expected := `
# HELP social_notification_failures_total Notification writes that failed after the parent action committed.
# TYPE social_notification_failures_total counter
social_notification_failures_total{type="unknown"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(
		metrics.Registry,
		strings.NewReader(expected),
		"social_notification_failures_total",
	))
}
