package middleware

import "github.com/gin-gonic/gin"

// Streaming marks a route whose body is written incrementally. It asks
// reverse proxies not to buffer or cache the response, so chunks and
// server-sent events reach the client as they are written, and counts the
// stream in http_streams_open while it is open.
func Streaming() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Accel-Buffering", "no")
		h.Set("Cache-Control", "no-cache")

		g := streamsOpen.WithLabelValues(routeLabel(c))
		g.Inc()
		defer g.Dec()
		c.Next()
	}
}
