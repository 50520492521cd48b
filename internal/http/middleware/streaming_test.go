package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStreaming_HeadersAndOpenGauge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	gauge := streamsOpen.WithLabelValues("/s/:id")
	var during float64
	r.GET("/s/:id", Streaming(), func(c *gin.Context) {
		during = testutil.ToFloat64(gauge)
		c.String(http.StatusOK, "x")
	})

	base := testutil.ToFloat64(gauge)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/abc", nil))

	if w.Header().Get("X-Accel-Buffering") != "no" || w.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("headers = %v", w.Header())
	}
	if during != base+1 {
		t.Fatalf("open streams during handler = %v, want %v", during, base+1)
	}
	if got := testutil.ToFloat64(gauge); got != base {
		t.Fatalf("open streams after handler = %v, want %v", got, base)
	}
}
