package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeGemini(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("key") != "good-key" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models":
			w.Write([]byte(`{"models":[]}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":generateContent"):
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Jane Doe\nSenior Go Engineer"}]}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer closeEnv()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKeyAndImproveRoundTrip(t *testing.T) {
	srv := fakeGemini(t)
	t.Setenv("GEMINI_BASE_URL", srv.URL)
	t.Setenv("GEMINI_TRANSPORT", "rest")
	dir := t.TempDir()

	if _, err := run(t, "--home", dir, "--lang", "en", "key", "set", "bad-key"); err == nil || err.Error() != "API key not valid" {
		t.Fatalf("expected provider message, got %v", err)
	}

	out, err := run(t, "--home", dir, "--lang", "en", "key", "set", "good-key")
	if err != nil {
		t.Fatalf("key set: %v", err)
	}
	if !strings.Contains(out, "Key is valid") {
		t.Fatalf("unexpected key set output %q", out)
	}

	if _, err := run(t, "--home", dir, "key", "check"); err != nil {
		t.Fatalf("key check: %v", err)
	}

	draft := filepath.Join(dir, "draft.txt")
	if err := os.WriteFile(draft, []byte("jane, go dev, 5 years"), 0o600); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	pdfPath := filepath.Join(dir, "cv.pdf")
	out, err = run(t, "--home", dir, "--lang", "en", "improve", "--in", draft, "--pdf", pdfPath)
	if err != nil {
		t.Fatalf("improve: %v", err)
	}
	if out != "Jane Doe\nSenior Go Engineer\n" {
		t.Fatalf("unexpected improve output %q", out)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected pdf output")
	}

	if _, err := run(t, "--home", dir, "key", "clear"); err != nil {
		t.Fatalf("key clear: %v", err)
	}
	_, err = run(t, "--home", dir, "--lang", "en", "improve", "--in", draft)
	if err == nil || err.Error() != "Please add your Gemini API key in the settings first." {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestExportWritesLocalizedFilename(t *testing.T) {
	t.Setenv("GEMINI_BASE_URL", "http://127.0.0.1:1")
	dir := t.TempDir()
	in := filepath.Join(dir, "improved.txt")
	if err := os.WriteFile(in, []byte("Jane Doe\nSenior Go Engineer"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	if _, err := run(t, "--home", dir, "--lang", "en", "export", "--in", in); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Improved_CV.pdf")); err != nil {
		t.Fatalf("expected Improved_CV.pdf: %v", err)
	}

	empty := filepath.Join(dir, "empty.txt")
	os.WriteFile(empty, nil, 0o600)
	if _, err := run(t, "--home", dir, "--lang", "en", "export", "--in", empty); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	if _, err := run(t, "--home", t.TempDir(), "--lang", "fr", "key", "check"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}
