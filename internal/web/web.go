// Package web serves the CV improver page and its JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/export"
	"cv-improver/internal/i18n"
	"cv-improver/internal/improver"
	"cv-improver/internal/services/health"
	"cv-improver/internal/shared/server/middleware"
	"cv-improver/internal/shared/server/respond"
	"cv-improver/internal/shared/telemetry"
)

//go:embed templates/*.tmpl assets/*
var content embed.FS

const localeKey = "locale"

// Handler wires HTTP handlers to the session registry.
type Handler struct {
	Registry *improver.Registry
	Catalog  *i18n.Catalog
	Renderer export.Renderer
	// Health is optional; nil reports healthy.
	Health *health.Service
	// SettleHold is how long the page waits before asking to settle a
	// successful key validation.
	SettleHold time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(registry *improver.Registry, catalog *i18n.Catalog, renderer export.Renderer, hold time.Duration) *Handler {
	if hold <= 0 {
		hold = improver.DefaultSettleHold
	}
	return &Handler{Registry: registry, Catalog: catalog, Renderer: renderer, SettleHold: hold}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"localeName": localeName,
	}).ParseFS(content, "templates/*.tmpl")
}

// Install sets the page templates and static assets on r.
func (h *Handler) Install(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	assets, err := fs.Sub(content, "assets")
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	r.StaticFS("/assets", http.FS(assets))
	return nil
}

// session resolves the caller's session and records its locale for request logs.
func (h *Handler) session(c *gin.Context) (*improver.Session, bool) {
	id := middleware.SessionIDFromContext(c)
	if id == "" {
		if isAPI(c) {
			respond.Error(c, http.StatusInternalServerError, "session_missing", "session cookie not set", nil)
		} else {
			c.String(http.StatusInternalServerError, "session cookie not set")
			c.Abort()
		}
		return nil, false
	}
	s, err := h.Registry.Get(c.Request.Context(), id)
	if err != nil {
		telemetry.Warn("session.check_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
	}
	c.Set(localeKey, string(s.Locale()))
	return s, true
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func localeName(l i18n.Locale) string {
	switch l {
	case i18n.Arabic:
		return "العربية"
	case i18n.English:
		return "English"
	default:
		return string(l)
	}
}

// seconds formats d for a meta refresh.
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
