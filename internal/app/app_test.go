package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursekit/internal/storage"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("COURSEKIT_LLM_PROVIDER", "mock")
	t.Setenv("COURSEKIT_STORAGE_MODE", "local")
	t.Setenv("COURSEKIT_LOCAL_STORAGE_DIR", filepath.Join(dir, "packages"))
	t.Setenv("COURSEKIT_PROGRESS_DSN", filepath.Join(dir, "progress.db"))
	t.Setenv("COURSEKIT_CORS_ORIGINS", "http://a.example.com, ,http://b.example.com")
	t.Setenv("COURSEKIT_REDIS_ADDR", "")
	return ConfigFromEnv()
}

func TestConfigFromEnv(t *testing.T) {
	cfg := testConfig(t)
	if cfg.LLM.Provider != "mock" || cfg.Storage.Mode != storage.ModeLocal {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
}

func TestNewWiresServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, filepath.Join(t.TempDir(), "app.db"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Syllabi == nil || a.Courses == nil || a.Chat == nil || a.Career == nil || a.Progress == nil {
		t.Fatal("services not wired")
	}
	if a.Config.Storage.SigningKey == "" {
		t.Error("local storage needs a generated signing key")
	}
	if _, ok := a.Objects.(*storage.LocalStore); !ok {
		t.Errorf("expected local store, got %T", a.Objects)
	}

	srv := a.HTTPServer()
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses", nil))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("GET /courses = %d %s", w.Code, w.Body.String())
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
