package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"http://localhost:5173/", " "}, next)

	tests := []struct {
		name          string
		method        string
		origin        string
		requestMethod string
		wantStatus    int
		wantOrigin    string
		wantMethods   string
	}{
		{"allowed preflight", http.MethodOptions, "http://localhost:5173", http.MethodPost, http.StatusNoContent, "http://localhost:5173", "GET, POST, DELETE, OPTIONS"},
		{"preflight for unsupported method", http.MethodOptions, "http://localhost:5173", http.MethodPut, http.StatusNoContent, "", ""},
		{"disallowed preflight", http.MethodOptions, "http://evil.test", http.MethodGet, http.StatusNoContent, "", ""},
		{"allowed request", http.MethodGet, "http://localhost:5173", "", http.StatusOK, "http://localhost:5173", ""},
		{"disallowed request", http.MethodGet, "http://evil.test", "", http.StatusOK, "", ""},
		{"no origin", http.MethodGet, "", "", http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/registrations", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORS_WildcardOriginWithoutCredentials(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CORS([]string{"*", "http://app.test"}, next)

	req := httptest.NewRequest(http.MethodGet, "/registrations", nil)
	req.Header.Set("Origin", "http://other.test")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/registrations", nil)
	req.Header.Set("Origin", "http://app.test")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "http://app.test", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_StreamedResponseCarriesHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, "{\"type\":\"progress\"}\n")
		_ = http.NewResponseController(w).Flush()
	})
	handler := CORS([]string{"http://localhost:5173"}, next)

	req := httptest.NewRequest(http.MethodPost, "/registrations/bulk", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.True(t, rr.Flushed)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, X-Request-ID", rr.Header().Get("Access-Control-Expose-Headers"))
}
