package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)
		c.Next()
	}
}

func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := c.Get(requestIDHeader)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
			"client_ip", c.ClientIP(),
		)
	}
}

type window struct {
	count int
	start time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows. Entries
// from stale windows are swept opportunistically on later requests.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*window
	limit   int
	period  time.Duration
	cleanup time.Time
}

func NewFixedWindowLimiter(limit int, period time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:   make(map[string]*window),
		limit:   limit,
		period:  period,
		cleanup: time.Now().Add(period),
	}
}

// Allow reports whether key may proceed, and when not, how long until
// its window resets.
func (l *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.cleanup) {
		for k, w := range l.store {
			if now.Sub(w.start) > 2*l.period {
				delete(l.store, k)
			}
		}
		l.cleanup = now.Add(l.period)
	}

	w, ok := l.store[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.store[key] = &window{count: 1, start: now}
		return true, 0
	}
	if w.count >= l.limit {
		retryAfter := l.period - now.Sub(w.start)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}
	w.count++
	return true, 0
}

// RateLimitMiddleware caps requests per client IP using the fixed-window
// limiter. Excess requests get a 429 with a Retry-After hint.
func RateLimitMiddleware(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Allow(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", retryAfterSeconds(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error: "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("%d", seconds)
}
