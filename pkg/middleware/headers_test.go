package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/boutiques", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	CORS(cfg)(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestCORS_Origins(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://mall.example.mg"},
		Environment:    "production",
	}

	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
		vary   bool
	}{
		{"development allows any", CORSConfig{Environment: "development"}, "http://localhost:4200", "*", false},
		{"explicit wildcard", CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"}, "https://x.test", "*", false},
		{"listed origin echoed", prod, "https://mall.example.mg", "https://mall.example.mg", true},
		{"unlisted origin", prod, "https://evil.test", "", false},
		{"no origin header", prod, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := corsRequest(tt.cfg, http.MethodGet, tt.origin)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.vary, rec.Header().Get("Vary") == "Origin")
		})
	}
}

func TestCORS_Defaults(t *testing.T) {
	rec := corsRequest(CORSConfig{}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CustomConfig(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://mall.example.mg"},
		AllowedMethods:   []string{"GET"},
		ExposedHeaders:   []string{"X-Correlation-ID", "X-Total-Count"},
		MaxAge:           60,
		AllowCredentials: true,
	}

	rec := corsRequest(cfg, http.MethodGet, "https://mall.example.mg")

	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Correlation-ID, X-Total-Count", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rec := corsRequest(DefaultCORSConfig(), http.MethodOptions, "http://localhost:4200")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfig_DoesNotShareDefaults(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedMethods[0] = "PATCH"

	assert.Equal(t, http.MethodGet, DefaultCORSConfig().AllowedMethods[0])
}

func TestCacheControl(t *testing.T) {
	h := CacheControl(300)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}
