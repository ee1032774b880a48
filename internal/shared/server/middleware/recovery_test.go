package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryAPIReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/api/v1/state", func(c *gin.Context) { panic("boom") })
	router.GET("/", func(c *gin.Context) { panic("boom") })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	if resp.Code != http.StatusInternalServerError || !strings.Contains(resp.Body.String(), `"code":"internal"`) {
		t.Fatalf("unexpected api response %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError || resp.Body.String() != "Unexpected server error" {
		t.Fatalf("unexpected page response %d %s", resp.Code, resp.Body.String())
	}
}
