package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_PerClient(t *testing.T) {
	h := New(nil, nil, WithRateLimit(1, 2)).Handler()

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)

	limited := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, limited.Body.String())

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := New(nil, nil, WithRateLimit(0, 10))
	assert.Nil(t, s.limiter)

	h := s.Handler()
	for range 20 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientLimiter_RefillsAndEvicts(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("a"))

	now = now.Add(clientIdleTTL + time.Second)
	l.evictIdle(now)
	assert.Empty(t, l.clients)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", clientKey(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(req))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(5))
	assert.Equal(t, 3, retryAfterSeconds(0.5))
}
