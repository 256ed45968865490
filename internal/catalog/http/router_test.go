package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Health() error { return s.err }

func newRouter(checker HealthChecker, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&stubService{})
	RegisterRoutes(r, h, checker, cfg)
	return r
}

func defaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,
		StaticDir:         "does-not-exist",
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newRouter(&stubChecker{}, defaultRouterConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("want status OK, got %q", body["status"])
	}
	if body["service"] != serviceName {
		t.Fatalf("want service %q, got %q", serviceName, body["service"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
}

func TestDBHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		checkerErr error
		wantStatus int
		wantDB     string
	}{
		{
			name:       "database reachable",
			wantStatus: http.StatusOK,
			wantDB:     "connected",
		},
		{
			name:       "database unreachable",
			checkerErr: errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantDB:     "disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubChecker{err: tt.checkerErr}, defaultRouterConfig())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/db", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d", tt.wantStatus, w.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["database"] != tt.wantDB {
				t.Fatalf("want database %q, got %q", tt.wantDB, body["database"])
			}
			if tt.checkerErr != nil && body["error"] == "" {
				t.Fatalf("want error detail in 503 body, got %v", body)
			}
		})
	}
}

func TestStaticFallback_MissingBundle(t *testing.T) {
	r := newRouter(&stubChecker{}, defaultRouterConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/some/page", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Frontend not found" {
		t.Fatalf("want missing-bundle error, got %v", body)
	}
}

func TestStaticFallback_ServesBundle(t *testing.T) {
	dir := t.TempDir()
	index := []byte("<html>app</html>")
	asset := []byte("body{}")
	if err := os.WriteFile(filepath.Join(dir, "index.html"), index, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.css"), asset, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultRouterConfig()
	cfg.StaticDir = dir
	r := newRouter(&stubChecker{}, cfg)

	tests := []struct {
		name string
		path string
		want []byte
	}{
		{name: "existing asset", path: "/main.css", want: asset},
		{name: "client route falls back to index", path: "/products/7/edit", want: index},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("want 200, got %d", w.Code)
			}
			if w.Body.String() != string(tt.want) {
				t.Fatalf("want body %q, got %q", tt.want, w.Body.String())
			}
		})
	}
}

func TestUnknownAPIRouteStaysJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultRouterConfig()
	cfg.StaticDir = dir
	r := newRouter(&stubChecker{}, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}

	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("api miss should be JSON, got %q: %v", w.Body.String(), err)
	}
	if env.Success {
		t.Fatalf("want success=false, got true")
	}
}
