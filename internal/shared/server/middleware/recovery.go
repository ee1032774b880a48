package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/shared/server/respond"
	"cv-improver/internal/shared/telemetry"
)

// Recovery turns panics into a 500. JSON API callers get the error envelope;
// page requests get a plain-text body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"session":    sessionLogID(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
				return
			}
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusInternalServerError)
			_, _ = c.Writer.WriteString("Unexpected server error")
		}()
		c.Next()
	}
}
