package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/extract"
	"cv-improver/internal/i18n"
	"cv-improver/internal/improver"
	"cv-improver/internal/shared/server/middleware"
	"cv-improver/internal/shared/server/respond"
	"cv-improver/internal/shared/telemetry"
	"cv-improver/internal/shared/util"
)

const (
	pageTemplate = "index.html.tmpl"
	pdfMIME      = "application/pdf"
)

type localeLink struct {
	Code   i18n.Locale
	Active bool
}

type pageView struct {
	improver.State
	Locales []localeLink
	// SettleAfter is the meta refresh delay while a validation settles.
	SettleAfter string
}

// RegisterPages attaches the server-rendered page routes. Every form post
// redirects back to the page.
func (h *Handler) RegisterPages(r gin.IRoutes, limited gin.HandlerFunc) {
	if limited == nil {
		limited = passThrough
	}
	r.GET("/", h.index)
	r.POST("/lang/:code", h.setLanguage)
	r.GET("/settings", h.openSettings)
	r.POST("/settings/close", h.closeSettings)
	r.POST("/settings/key", limited, h.saveKey)
	r.GET("/settings/settle", h.settle)
	r.POST("/settings/clear", h.clearKey)
	r.POST("/improve", limited, h.improve)
	r.POST("/draft/import", h.importDraft)
	r.GET("/export", h.exportPage)
}

func (h *Handler) index(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st := s.State()
	view := pageView{State: st, SettleAfter: seconds(h.SettleHold)}
	for _, l := range i18n.Supported() {
		view.Locales = append(view.Locales, localeLink{Code: l, Active: st.ActiveLocale[l]})
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, pageTemplate, view)
}

func (h *Handler) setLanguage(c *gin.Context) {
	locale, err := i18n.ParseLocale(c.Param("code"))
	if err != nil {
		c.String(http.StatusBadRequest, "unsupported language")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.SetLanguage(locale)
	c.Set(localeKey, string(locale))
	back(c)
}

func (h *Handler) openSettings(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.OpenSettings()
	back(c)
}

func (h *Handler) closeSettings(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.CloseSettings()
	back(c)
}

// saveKey validates the submitted key. Outcomes are reflected in the
// overlay, so errors only need logging here.
func (h *Handler) saveKey(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ValidateAndSaveAPIKey(c.Request.Context(), c.PostForm("api_key")); errors.Is(err, improver.ErrBusy) {
		telemetry.Info("apikey.busy", map[string]any{"request_id": middleware.RequestIDFromContext(c)})
	}
	back(c)
}

func (h *Handler) settle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_ = s.Settle(c.Request.Context())
	back(c)
}

func (h *Handler) clearKey(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ClearAPIKey(c.Request.Context()); err != nil {
		telemetry.Error("apikey.clear_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
		s.ShowError("error_unknown")
	}
	back(c)
}

func (h *Handler) improve(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	// Failures land in the error banner.
	_, _ = s.Improve(c.Request.Context(), c.PostForm("cv_text"))
	back(c)
}

func (h *Handler) importDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extract.MaxUploadBytes+1<<20)

	text, err := h.readUpload(c)
	if err != nil {
		s.ShowError("error_import_failed")
		back(c)
		return
	}
	s.SetDraft(text)
	back(c)
}

func (h *Handler) readUpload(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		telemetry.Warn("import.no_file", map[string]any{"request_id": middleware.RequestIDFromContext(c), "error": err})
		return "", err
	}
	name, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		telemetry.Warn("import.bad_name", map[string]any{"request_id": middleware.RequestIDFromContext(c)})
		return "", err
	}
	if fileHeader.Size > extract.MaxUploadBytes {
		telemetry.Warn("import.too_large", map[string]any{"file": name, "size": fileHeader.Size})
		return "", extract.ErrTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, extract.MaxUploadBytes+1))
	if err != nil {
		return "", err
	}

	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), name)
	if err != nil {
		telemetry.Warn("import.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"file":       name,
			"error":      err,
		})
		return "", err
	}
	telemetry.Info("import.completed", map[string]any{"file": name, "chars": len([]rune(text))})
	return text, nil
}

func (h *Handler) exportPage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	out, err := s.Export(c.Request.Context(), h.Renderer)
	if err != nil {
		// Disabled export is a no-op; renderer failures show in the banner.
		back(c)
		return
	}
	respond.Attachment(c, pdfMIME, out.Filename, out.Data)
}

func passThrough(c *gin.Context) { c.Next() }

func back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
