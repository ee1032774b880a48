package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/i18n"
	"cv-improver/internal/improver"
	"cv-improver/internal/llm"
	"cv-improver/internal/shared/server/respond"
)

// RegisterAPI attaches the JSON API to rg.
func (h *Handler) RegisterAPI(rg *gin.RouterGroup, limited gin.HandlerFunc) {
	if limited == nil {
		limited = passThrough
	}
	rg.GET("/health", h.apiHealth)
	rg.GET("/state", h.apiState)
	rg.POST("/lang", h.apiSetLanguage)
	rg.POST("/key", limited, h.apiSaveKey)
	rg.DELETE("/key", h.apiClearKey)
	rg.POST("/improve", limited, h.apiImprove)
	rg.GET("/export", h.apiExport)
}

const keyMask = "••••"

type langRequest struct {
	Locale string `json:"locale"`
}

type keyRequest struct {
	APIKey string `json:"apiKey"`
}

type improveRequest struct {
	Text string `json:"text"`
}

type improveResponse struct {
	Result string         `json:"result"`
	State  improver.State `json:"state"`
}

func (h *Handler) apiHealth(c *gin.Context) {
	report := h.Health.Status(c.Request.Context())
	status := http.StatusOK
	if !report.OK {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, report)
}

func (h *Handler) apiState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, clientState(s))
}

func (h *Handler) apiSetLanguage(c *gin.Context) {
	var req langRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	locale, err := i18n.ParseLocale(req.Locale)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unsupported_locale", err.Error(), gin.H{"supported": i18n.Supported()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.SetLanguage(locale)
	c.Set(localeKey, string(locale))
	respond.OK(c, clientState(s))
}

func (h *Handler) apiSaveKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "apiKey is required", nil)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	err := s.ValidateAndSaveAPIKey(c.Request.Context(), req.APIKey)
	switch {
	case err == nil:
		respond.OK(c, clientState(s))
	case errors.Is(err, improver.ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", "a validation is already in progress", nil)
	default:
		st := s.State()
		respond.Error(c, http.StatusUnprocessableEntity, string(llm.CredentialInvalid), st.Settings.Error, gin.H{
			"kind": llm.KindOf(err),
		})
	}
}

func (h *Handler) apiClearKey(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ClearAPIKey(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "store_failed", "failed to remove key", nil)
		return
	}
	respond.OK(c, clientState(s))
}

func (h *Handler) apiImprove(c *gin.Context) {
	var req improveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	out, err := s.Improve(c.Request.Context(), req.Text)
	if err != nil {
		status, code := improveFailure(err)
		msg := s.State().Error
		if msg == "" {
			msg = err.Error()
		}
		respond.Error(c, status, code, msg, nil)
		return
	}
	respond.OK(c, improveResponse{Result: out, State: clientState(s)})
}

// clientState is the session state as sent over the API. The stored key is
// only ever echoed masked.
func clientState(s *improver.Session) improver.State {
	st := s.State()
	st.Settings.Field = maskKey(st.Settings.Field)
	return st
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 8 {
		return keyMask
	}
	return keyMask + string(r[len(r)-4:])
}

// improveFailure maps an Improve error onto an HTTP status and error code.
func improveFailure(err error) (int, string) {
	switch {
	case errors.Is(err, improver.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, improver.ErrBusy):
		return http.StatusConflict, "busy"
	}
	switch kind := llm.KindOf(err); kind {
	case llm.MissingCredential:
		return http.StatusPreconditionRequired, string(kind)
	case llm.MalformedResponse, llm.NetworkFailure:
		return http.StatusBadGateway, string(kind)
	default:
		return http.StatusBadGateway, string(llm.GenerationFailed)
	}
}

func (h *Handler) apiExport(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	out, err := s.Export(c.Request.Context(), h.Renderer)
	switch {
	case errors.Is(err, improver.ErrExportDisabled):
		respond.Error(c, http.StatusConflict, "export_disabled", "there is no result to export", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "export_failed", s.State().Error, nil)
		return
	}
	respond.Attachment(c, pdfMIME, out.Filename, out.Data)
}
