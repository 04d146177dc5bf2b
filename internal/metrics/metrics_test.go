package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Put("/api/order/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodPut, "/api/order/"+id+"/status", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodPut, "/api/order/{id}/status", "400"))
	assert.Equal(t, 3.0, got)
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.Transition("pickup", "completed", "applied")
	m.Transition("pickup", "completed", "applied")
	m.PointsCredited(50)
	m.PointsCredited(-3)
	m.PointsRedeemed(20)
	m.StockAvailable(42.5)
	m.Geocode("fallback")
	m.RoutePlan("gemini")
	m.CacheLookup(true)
	m.CacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("pickup", "completed", "applied")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.pointsCredited))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.pointsRedeemed))
	assert.Equal(t, 42.5, testutil.ToFloat64(m.stockAvailable))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.geocodes.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routePlans.WithLabelValues("gemini")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Transition("order", "confirmed", "applied")
		m.PointsCredited(10)
		m.StockAvailable(1)
		m.Geocode("provider")
		m.RoutePlan("fallback")
		m.CacheLookup(true)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RoutePlan("fallback")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "waste2wealth_route_plans_total"))
}
