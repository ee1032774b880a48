package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cv-improver/internal/shared/util"
)

const (
	sessionIDKey  = "sessionId"
	sessionMaxAge = 365 * 24 * time.Hour
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
}

// Session ensures every request carries a session id cookie. Malformed or
// missing cookies are replaced with a fresh random id.
func Session(opts SessionOptions) gin.HandlerFunc {
	name := opts.CookieName
	if name == "" {
		name = "cvi_session"
	}
	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(name); err == nil {
			if parsed, err := uuid.Parse(raw); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, id, int(sessionMaxAge/time.Second), "/", "", opts.Secure, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session id set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// sessionLogID is the hashed prefix of the session id used in log lines.
func sessionLogID(c *gin.Context) string {
	id := SessionIDFromContext(c)
	if id == "" {
		return ""
	}
	return util.HashOwner(id)[:12]
}
