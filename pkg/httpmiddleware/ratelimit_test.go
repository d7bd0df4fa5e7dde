package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func fromAddr(addr string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = addr }
}

func TestLimiter_Window(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	d := l.Allow("a", t0)
	require.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, t0.Add(time.Minute), d.ResetAt)

	require.True(t, l.Allow("a", t0.Add(time.Second)).Allowed)
	assert.False(t, l.Allow("a", t0.Add(2*time.Second)).Allowed)
	assert.True(t, l.Allow("b", t0.Add(2*time.Second)).Allowed, "keys are independent")

	// A quarter into the next window the previous two still weigh 1.5.
	assert.True(t, l.Allow("a", t0.Add(75*time.Second)).Allowed)
	assert.False(t, l.Allow("a", t0.Add(76*time.Second)).Allowed)

	// Two idle windows reset the key.
	assert.True(t, l.Allow("a", t0.Add(5*time.Minute)).Allowed)
}

func TestLimiter_Sweep(t *testing.T) {
	l := NewLimiter(1, time.Second)
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.Allow("a", t0)
	l.Allow("b", t0.Add(3*time.Second))

	l.Sweep(t0.Add(3 * time.Second))
	assert.Equal(t, 1, l.Len())
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := RateLimit(ctx, RateLimitConfig{Max: 2, Window: time.Minute})(okHandler())

	for i := range 2 {
		w := hit(h, fromAddr("10.0.0.1:9999"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}

	w := hit(h, fromAddr("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded","kind":"RateLimited"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, hit(h, fromAddr("10.0.0.2:1234")).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(context.Background(), RateLimitConfig{})(okHandler())
	for range 10 {
		w := hit(h, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_CustomKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := RateLimit(ctx, RateLimitConfig{
		Max:     1,
		Window:  time.Minute,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-Admin-Key") },
	})(okHandler())
	withKey := func(k string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("X-Admin-Key", k) }
	}

	assert.Equal(t, http.StatusOK, hit(h, withKey("a")).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, withKey("a")).Code)
	assert.Equal(t, http.StatusOK, hit(h, withKey("b")).Code)
}

func TestClientIP(t *testing.T) {
	for _, tt := range []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"RemoteAddr", nil, "192.168.1.1:4444", "192.168.1.1"},
		{"RemoteAddrNoPort", nil, "192.168.1.1", "192.168.1.1"},
		{"ForwardedFor", map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}, "10.0.0.1:1", "203.0.113.50"},
		{"RealIP", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "198.51.100.7"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
