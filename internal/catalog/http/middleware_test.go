package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestFixedWindowLimiter_Allow(t *testing.T) {
	limiter := NewFixedWindowLimiter(2, 50*time.Millisecond)

	if ok, _ := limiter.Allow("a"); !ok {
		t.Fatal("first request should pass")
	}
	if ok, _ := limiter.Allow("a"); !ok {
		t.Fatal("second request should pass")
	}
	ok, retryAfter := limiter.Allow("a")
	if ok {
		t.Fatal("third request should be rejected")
	}
	if retryAfter <= 0 || retryAfter > 50*time.Millisecond {
		t.Fatalf("retry-after out of range: %v", retryAfter)
	}

	// Other keys have their own budget.
	if ok, _ := limiter.Allow("b"); !ok {
		t.Fatal("different client should pass")
	}

	// A new window resets the count.
	time.Sleep(60 * time.Millisecond)
	if ok, _ := limiter.Allow("a"); !ok {
		t.Fatal("request in fresh window should pass")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(NewFixedWindowLimiter(2, time.Minute)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)

		if i == 2 {
			if w.Header().Get("Retry-After") == "" {
				t.Fatal("rejected request should carry Retry-After")
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("request %d: want status %d, got %d", i, want[i], statuses[i])
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("generates id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Header().Get(requestIDHeader) == "" {
			t.Fatal("expected generated request id")
		}
	})

	t.Run("echoes caller id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, "req-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "req-123" {
			t.Fatalf("want echoed id req-123, got %q", got)
		}
	})
}
