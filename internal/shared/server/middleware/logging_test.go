package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cv-improver/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { telemetry.Setup("production", "info") })

	router := gin.New()
	router.Use(RequestID(), Session(SessionOptions{}), Logging())
	router.GET("/improve/:step", func(c *gin.Context) {
		c.Set("locale", "en")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/improve/1", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v (%s)", err, last)
	}

	required := []string{"request_id", "session", "duration_ms", "status", "route", "locale"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["route"] != "/improve/:step" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}

func TestLoggingSkipsAssets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { telemetry.Setup("production", "info") })

	router := gin.New()
	router.Use(Logging())
	router.GET("/assets/app.css", func(c *gin.Context) { c.String(http.StatusOK, "body{}") })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected no log output for assets, got %s", buf.String())
	}
}
