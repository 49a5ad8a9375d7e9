package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware(t *testing.T) {
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/books/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/books/1/", "/api/books/2/", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `bookstore_http_requests_total{method="GET",route="/api/books/:id/",status="200"} 2`)
	assert.Contains(t, body, `bookstore_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, "bookstore_http_inflight_requests 0")
	assert.NotContains(t, body, `route="/metrics"`)
}

func TestRegister(t *testing.T) {
	m := New()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "bookstore_test_total", Help: "test"})

	require.NoError(t, m.Register(counter))
	assert.Error(t, m.Register(counter))
}
