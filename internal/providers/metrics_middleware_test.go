package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncBungieRequests(_ string, _ int)                {}
func (m *mockMetrics) IncPagesFetched()                                 {}
func (m *mockMetrics) IncActivitiesProcessed(_ string)                  {}
func (m *mockMetrics) IncDefinitionCacheHits()                          {}
func (m *mockMetrics) IncDefinitionCacheMisses()                        {}
func (m *mockMetrics) IncResponseCacheHits()                            {}
func (m *mockMetrics) IncResponseCacheMisses()                          {}
func (m *mockMetrics) ObservePersistDuration(_ time.Duration)           {}
func (m *mockMetrics) SetQueueDepth(_ int)                              {}

func testRoutes(urls ...string) []structures.Route {
	routes := make([]structures.Route, 0, len(urls))
	for _, url := range urls {
		routes = append(routes, structures.Route{Url: url})
	}
	return routes
}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	mw := MetricsMiddleware(metrics, testRoutes("/leaderboard"), handler)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/leaderboard", metrics.requestEndpoint)
	assert.Equal(t, http.StatusCreated, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, testRoutes("/leaderboard"), handler)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

func TestMetricsMiddleware_UnknownPathCollapsesToOther(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	mw := MetricsMiddleware(metrics, testRoutes("/leaderboard", "/player"), handler)

	req := httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, "other", metrics.requestEndpoint)
	assert.Equal(t, http.StatusNotFound, metrics.requestStatus)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
