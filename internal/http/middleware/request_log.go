package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assetpm-backend/internal/platform/ctxutil"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

// Probe routes log at debug so they do not drown the maintenance traffic.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/readyz":      true,
	"/metrics":     true,
}

// RequestLogger writes one line per request. The row filter and the export
// filename are included when present so a branch's traffic can be followed.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if v := c.Query("customer_id"); v != "" {
			fields = append(fields, "customer_id", v)
		}
		if v := c.Query("branch"); v != "" {
			fields = append(fields, "branch", v)
		}
		if v := c.Writer.Header().Get("Content-Disposition"); v != "" {
			fields = append(fields, "disposition", v)
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
