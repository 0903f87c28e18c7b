package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSecurityHeaders(t *testing.T) {
	h := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), logger)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search", nil))
	assert.Contains(t, buf.String(), "path=/api/search")
	assert.Contains(t, buf.String(), "status=418")

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/static/css/main.css", nil))
	assert.Empty(t, buf.String(), "static requests log at debug")
}

func TestGzipCompression(t *testing.T) {
	large := strings.Repeat(`{"stop": "Park Street"}`, 500)
	h := withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(large))
	}), discard, nil)

	t.Run("compresses when accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/routes", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer zr.Close()
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, large, string(body))
		assert.Less(t, rec.Body.Len(), len(large))
	})

	t.Run("plain when not accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/routes", nil))
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})
}

func TestStaticCacheHandler(t *testing.T) {
	h := staticCacheHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/css/main.css?v=abc", nil))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/css/main.css", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Hour)
	defer rl.Stop()
	h := rl.handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("/api/search", "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, do("/api/search", "10.0.0.1:2222").Code)

	rec := do("/api/search", "10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")

	// Other clients and static assets are unaffected.
	assert.Equal(t, http.StatusOK, do("/api/search", "10.0.0.2:1111").Code)
	assert.Equal(t, http.StatusOK, do("/static/js/app.js", "10.0.0.1:4444").Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(5, time.Second)
	defer rl.Stop()

	rl.get("a")
	rl.get("b")
	rl.clients["a"].lastSeen = time.Now().Add(-2 * idleLimiterTTL)

	rl.cleanup(time.Now())
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")

	rl.Stop() // idempotent
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "not-a-hostport"
	assert.Equal(t, "not-a-hostport", clientIP(req))
}
