package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/shared/config"
	"cv-improver/internal/shared/metrics"
	"cv-improver/internal/shared/server/middleware"
	"cv-improver/internal/web"
)

// RouterDeps are the collaborators the router mounts.
type RouterDeps struct {
	Config  config.Config
	Handler *web.Handler
	// Limiter is shared by every rate limited route; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Session(middleware.SessionOptions{
			CookieName: cfg.SessionCookie,
			Secure:     cfg.CookieSecure,
		}),
	)

	if err := deps.Handler.Install(r); err != nil {
		return nil, fmt.Errorf("install web: %w", err)
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	limited := middleware.RateLimit(middleware.PerMinute(cfg.RateLimitPerMin), limiter)

	r.GET("/metrics", metrics.Handler())
	deps.Handler.RegisterPages(r, limited)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORSAllowOrigin))
	// Preflights need a matching route for the group middleware to run.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	deps.Handler.RegisterAPI(api, limited)

	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
