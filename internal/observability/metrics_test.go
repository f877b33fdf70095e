package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/tickets", "GET", "FORBIDDEN")
	m.RecordRedirect("public_paths")
	m.RecordEvent("ticket_resolved")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/tickets|GET|200"])
	assert.Equal(t, int64(20), snap.AverageLatencyMs["/api/tickets|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/tickets|GET|FORBIDDEN"])
	assert.Equal(t, int64(1), snap.Redirects["public_paths"])
	assert.Equal(t, int64(1), snap.Events["ticket_resolved"])

	m.RecordRedirect("public_paths")
	assert.Equal(t, int64(1), snap.Redirects["public_paths"], "snapshot must be a copy")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordRedirect("x")
	m.RecordEvent("x")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestMetricsPrometheusHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordRedirect("public_paths")
	m.RecordEvent("ticket_claimed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `sfqs_http_requests_total{method="GET",route="/api/tickets",status="200"} 1`)
	assert.Contains(t, body, `sfqs_access_redirects_total{rule="public_paths"} 1`)
	assert.Contains(t, body, `sfqs_domain_events_total{type="ticket_claimed"} 1`)
	assert.Contains(t, body, "sfqs_http_request_duration_seconds_bucket")

	var nilMetrics *Metrics
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
