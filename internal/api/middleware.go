package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID reuses a caller supplied X-Request-ID or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}

// rateLimiter applies a token bucket per client IP. A non-positive rate
// disables it.
func (s *Server) rateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.Server.RateLimit <= 0 {
			c.Next()
			return
		}

		limiter := s.limiters.get(c.ClientIP(), s.config.Server.RateLimit, s.config.Server.RateBurst)
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// tokenAuth accepts "Authorization: Bearer <token>" or "X-API-Key". It is a
// no-op when no token is configured.
func (s *Server) tokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.config.Server.AuthToken
		if expected == "" {
			c.Next()
			return
		}

		token := c.GetHeader("X-API-Key")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API token"})
			return
		}
		c.Next()
	}
}

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepGap = time.Minute
)

// rateLimiterMap keeps one limiter per client and forgets idle clients.
type rateLimiterMap struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	lastSweep time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	return &rateLimiterMap{
		limiters:  make(map[string]*ipLimiter),
		lastSweep: time.Now(),
	}
}

func (m *rateLimiterMap) get(ip string, rps float64, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > limiterSweepGap {
		for key, entry := range m.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(m.limiters, key)
			}
		}
		m.lastSweep = now
	}

	entry, ok := m.limiters[ip]
	if !ok {
		if burst < 1 {
			burst = 1
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}
