package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

type window struct {
	count int
	ends  time.Time
}

// fixedWindowLimiter counts requests per client IP in fixed windows.
// Expired windows are swept at most once per purgeInterval.
type fixedWindowLimiter struct {
	mu        sync.Mutex
	limit     int
	length    time.Duration
	clients   map[string]*window
	lastPurge time.Time
	now       func() time.Time
}

func newFixedWindowLimiter(limit int, length time.Duration) *fixedWindowLimiter {
	return &fixedWindowLimiter{
		limit:   limit,
		length:  length,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// allow records one request and reports whether it fits in the window,
// together with the time the window resets.
func (l *fixedWindowLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) >= purgeInterval {
		l.purge(now)
	}

	w, ok := l.clients[key]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.length)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.limit, w.ends
}

func (l *fixedWindowLimiter) purge(now time.Time) {
	purged := 0
	for k, w := range l.clients {
		if now.After(w.ends) {
			delete(l.clients, k)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.clients)).Msg("rate limiter purged")
	}
}

func (l *fixedWindowLimiter) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, resets := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(resets).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &apierror.APIError{Detail: msg, Code: "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newFixedWindowLimiter(20, time.Minute).middleware("too many login attempts, try again in a minute")
}

// RateLimiter is the general API limiter: limit requests per window per IP.
func RateLimiter(limit int, length time.Duration) gin.HandlerFunc {
	return newFixedWindowLimiter(limit, length).middleware("too many requests, slow down")
}
