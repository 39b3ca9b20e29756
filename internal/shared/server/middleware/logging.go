package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

// quietRoutes are polled by infrastructure and logged at debug level only.
var quietRoutes = map[string]bool{
	"/metrics":       true,
	"/api/v1/health": true,
}

// Logging emits one structured log line per request. Handlers may set
// "documentId" and "analysisId" on the context to have them included.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       route,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes":       c.Writer.Size(),
			"client_ip":   c.ClientIP(),
		}
		if id := c.GetString("documentId"); id != "" {
			fields["document_id"] = id
		}
		if id := c.GetString("analysisId"); id != "" {
			fields["analysis_id"] = id
		}

		if quietRoutes[route] {
			telemetry.Debug("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
