// Package mw holds gin middleware shared by the API routes.
package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiters keeps one token bucket per client IP.
type ipLimiters struct {
	mu    sync.Mutex
	perIP map[string]*rate.Limiter
	r     rate.Limit
	b     int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.perIP[ip]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.perIP[ip] = limiter
	}
	return limiter
}

// RateLimiter is a middleware for per-IP rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := &ipLimiters{perIP: make(map[string]*rate.Limiter), r: r, b: b}
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
