package respond

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusBadRequest, "empty_input", "Please enter your CV text first.", gin.H{"field": "text"})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "empty_input" || body.Error.Message != "Please enter your CV text first." {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAttachmentEncodesUnicodeFilename(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/f", func(c *gin.Context) {
		Attachment(c, "application/pdf", "سيرة_ذاتية_محسنة.pdf", []byte("%PDF-1.3"))
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/f", nil))

	_, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parse disposition: %v", err)
	}
	if params["filename"] != "سيرة_ذاتية_محسنة.pdf" {
		t.Fatalf("unexpected filename %q", params["filename"])
	}
	if resp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
}
