package restapi

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
	"rti.metlink.nz/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"stop":"5000"}`, 500)
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	}))

	t.Run("compresses when accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(recorder.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, large, string(body))
	})

	t.Run("plain otherwise", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, large, recorder.Body.String())
	})

	t.Run("small responses stay plain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		CompressionMiddleware(okHandler()).ServeHTTP(recorder, req)
		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := securityHeaders(okHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/alerts", nil)
	preflight.Header.Set("Origin", "https://board.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, preflight)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, recorder.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	request := func(handler http.Handler, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.RemoteAddr = addr
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		return recorder.Code
	}

	t.Run("limits each client separately", func(t *testing.T) {
		handler := NewRateLimitMiddleware(2, time.Minute, nil)(okHandler())
		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1000"))
		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1001"))
		assert.Equal(t, http.StatusTooManyRequests, request(handler, "10.0.0.1:1002"))
		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.2:1000"))
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		handler := NewRateLimitMiddleware(0, time.Second, nil)(okHandler())
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1000"))
		}
	})

	forwarded := func(handler http.Handler, remote, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", forwardedFor)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		return recorder.Code
	}

	t.Run("forwarded header from a direct client is ignored", func(t *testing.T) {
		handler := NewRateLimitMiddleware(2, time.Minute, []string{"10.0.0.0/8"})(okHandler())
		assert.Equal(t, http.StatusOK, forwarded(handler, "198.51.100.4:1000", "203.0.113.1"))
		assert.Equal(t, http.StatusOK, forwarded(handler, "198.51.100.4:1001", "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, forwarded(handler, "198.51.100.4:1002", "203.0.113.3"))
	})

	t.Run("trusted proxy forwards distinct clients", func(t *testing.T) {
		handler := NewRateLimitMiddleware(1, time.Minute, []string{"10.0.0.0/8"})(okHandler())
		assert.Equal(t, http.StatusOK, forwarded(handler, "10.0.0.5:1000", "203.0.113.1"))
		assert.Equal(t, http.StatusOK, forwarded(handler, "10.0.0.5:1001", "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, forwarded(handler, "10.0.0.5:1002", "203.0.113.1"))
	})

	t.Run("client address", func(t *testing.T) {
		trusted := parseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1", "not-an-address"})
		require.Len(t, trusted, 2)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", "198.51.100.9, 203.0.113.7, 192.0.2.1")
		assert.Equal(t, "203.0.113.7", clientAddress(req, trusted), "nearest untrusted hop")
		assert.Equal(t, "10.0.0.1", clientAddress(req, nil), "no trusted proxies configured")

		req.RemoteAddr = "203.0.113.50:443"
		assert.Equal(t, "203.0.113.50", clientAddress(req, trusted), "spoofed header from a direct client")

		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", "10.0.0.2")
		assert.Equal(t, "10.0.0.1", clientAddress(req, trusted), "only proxies in the chain")
	})

	t.Run("idle limiters are dropped", func(t *testing.T) {
		rl := newRateLimiter(1, time.Minute)
		clock := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return clock }

		rl.getLimiter("a")
		clock = clock.Add(2 * idleLimiterTTL)
		rl.getLimiter("b")
		assert.NotContains(t, rl.limiters, "a")
		assert.Contains(t, rl.limiters, "b")
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, logging.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/delays?x=1", nil)
	req.Header.Set("User-Agent", "board")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	output := buf.String()
	assert.Contains(t, output, `"msg":"http_request"`)
	assert.Contains(t, output, `"path":"/api/delays"`)
	assert.Contains(t, output, `"status":418`)
	assert.Contains(t, output, `"component":"http_server"`)
	assert.Contains(t, output, `"user_agent":"board"`)
}
