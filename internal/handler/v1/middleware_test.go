package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
)

func corsTestRouter(cfg config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func corsTestConfig() config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins: []string{"https://app.hospital.test", "https://admin.hospital.test"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         12 * time.Hour,
	}
}

func TestCORS_EchoesAllowedOrigin(t *testing.T) {
	r := corsTestRouter(corsTestConfig())

	for _, origin := range []string{"https://app.hospital.test", "https://admin.hospital.test"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", origin)
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Errorf("origin %s: got allow-origin %q", origin, got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("origin %s: expected Vary: Origin, got %q", origin, got)
		}
	}
}

func TestCORS_UnknownOriginGetsNoHeader(t *testing.T) {
	r := corsTestRouter(corsTestConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.test")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin %q for unknown origin", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("request itself must still succeed, got %d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := corsTestRouter(corsTestConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.hospital.test")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("unexpected allow-methods %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "43200" {
		t.Errorf("unexpected max-age %q", got)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := corsTestConfig()
	cfg.AllowedOrigins = []string{"*"}
	r := corsTestRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %q", got)
	}
}
