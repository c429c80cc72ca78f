package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discover-server/metrics"
)

func reply(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "` + msg + `"}`))
	}
}

// MockSessionHandler is a mock implementation of SessionRoutes.
type MockSessionHandler struct{}

func (h *MockSessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	reply("create")(w, r)
}
func (h *MockSessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	reply("get " + mux.Vars(r)["id"])(w, r)
}
func (h *MockSessionHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	reply("filters")(w, r)
}
func (h *MockSessionHandler) RetrySession(w http.ResponseWriter, r *http.Request) {
	reply("retry")(w, r)
}
func (h *MockSessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	reply("delete")(w, r)
}
func (h *MockSessionHandler) GetSessionChart(w http.ResponseWriter, r *http.Request) {
	reply("chart")(w, r)
}

// MockEstablishmentHandler is a mock implementation of EstablishmentRoutes.
type MockEstablishmentHandler struct{}

func (h *MockEstablishmentHandler) GetEstablishment(w http.ResponseWriter, r *http.Request) {
	reply("establishment " + mux.Vars(r)["id"])(w, r)
}
func (h *MockEstablishmentHandler) PostReview(w http.ResponseWriter, r *http.Request) {
	reply("review")(w, r)
}

func newTestRouter(reg *metrics.Registry) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, Logging(reg))
	var metricsHandler http.Handler
	if reg != nil {
		metricsHandler = reg.Handler()
	}
	NewRouter(&MockSessionHandler{}, &MockEstablishmentHandler{}, metricsHandler, router).RegisterRoutes()
	return router
}

func TestRouter_RegisterRoutes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		response   string
	}{
		{"Create Session", "POST", "/v1/sessions", http.StatusOK, `{"message": "create"}`},
		{"Get Session", "GET", "/v1/sessions/abc", http.StatusOK, `{"message": "get abc"}`},
		{"Delete Session", "DELETE", "/v1/sessions/abc", http.StatusOK, `{"message": "delete"}`},
		{"Update Filters", "PATCH", "/v1/sessions/abc/filters", http.StatusOK, `{"message": "filters"}`},
		{"Retry", "POST", "/v1/sessions/abc/retry", http.StatusOK, `{"message": "retry"}`},
		{"Chart", "GET", "/v1/sessions/abc/chart", http.StatusOK, `{"message": "chart"}`},
		{"Establishment", "GET", "/v1/establishments/e1", http.StatusOK, `{"message": "establishment e1"}`},
		{"Review", "POST", "/v1/establishments/e1/reviews", http.StatusOK, `{"message": "review"}`},
		{"Ping Route", "GET", "/ping", http.StatusOK, ""},
		{"Wrong Method", "PUT", "/v1/sessions/abc", http.StatusMethodNotAllowed, ""},
		{"Metrics Disabled", "GET", "/metrics", http.StatusNotFound, ""},
		{"Invalid Route", "GET", "/invalid", http.StatusNotFound, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, test.statusCode, rr.Code)
			if test.response != "" {
				assert.Equal(t, test.response, rr.Body.String())
			}
		})
	}
}

func TestMiddleware_RequestIDAndMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	router := newTestRouter(reg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/sessions/abc", nil))
	assert.NotEmpty(t, rr.Header().Get(REQUEST_ID_HEADER))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(REQUEST_ID_HEADER, "rid-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "rid-1", rr.Header().Get(REQUEST_ID_HEADER))
	assert.JSONEq(t, `{"status": "pong"}`, rr.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("GET", "/v1/sessions/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("GET", "/ping", "200")))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "discover_http_requests_total"))
}

func TestDiscoverHttpServer_ServeAndShutdown(t *testing.T) {
	router := mux.NewRouter()
	appRouter := NewRouter(&MockSessionHandler{}, &MockEstablishmentHandler{}, nil, router)

	hookRan := make(chan struct{})
	srv := NewDiscoverHttpServer(appRouter, router, "127.0.0.1:0", func() { close(hookRan) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	select {
	case <-hookRan:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook did not run")
	}
}
