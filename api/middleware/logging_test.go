package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/metrics"
)

func TestLoggingRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(Logging(logger.New(logger.Options{ServiceName: "test"}), httpMetrics))
	r.Get("/api/v1/track/{trackingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/track/FF-ABC123", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	var route string
	for _, mf := range families {
		if mf.GetName() != "freshfold_http_requests_total" {
			continue
		}
		for _, label := range mf.GetMetric()[0].GetLabel() {
			if label.GetName() == "route" {
				route = label.GetValue()
			}
		}
	}
	assert.Equal(t, "/api/v1/track/{trackingId}", route)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "freshfold_http_requests_total"))
}

func TestCORSWildcardAndList(t *testing.T) {
	handler := CORS("https://freshfold.example, https://admin.freshfold.example")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("Origin", "https://admin.freshfold.example")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, "https://admin.freshfold.example", resp.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))

	wild := CORS("*")(okHandler())
	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("Origin", "https://anyone.example")
	resp = httptest.NewRecorder()
	wild.ServeHTTP(resp, req)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
