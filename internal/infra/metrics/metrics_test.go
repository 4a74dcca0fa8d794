package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/auth/v1/signin", 200, 15*time.Millisecond)
	m.ObserveRequest("POST", "/auth/v1/signin", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/auth/v1/signin", 400, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/auth/v1/signin", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/auth/v1/signin", "400")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/health", 200, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, "account_service_http_requests_total"))
	require.True(t, strings.Contains(body, "go_goroutines"))
}
