// README: Per-IP token bucket rate limiting.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore drops limiters idle long enough to have refilled completely;
// a fresh limiter behaves the same, so pruning never loosens the limit.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func newLimiterStore(perMinute, burst int) *limiterStore {
	every := time.Minute / time.Duration(perMinute)
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Every(every),
		burst:     burst,
		idle:      max(time.Duration(burst)*every, time.Minute),
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastPrune) >= s.idle {
		s.prune(now)
	}
	e, ok := s.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// prune expects s.mu held and returns how many limiters it removed.
func (s *limiterStore) prune(now time.Time) int {
	removed := 0
	for ip, e := range s.limiters {
		if now.Sub(e.lastSeen) >= s.idle {
			delete(s.limiters, ip)
			removed++
		}
	}
	s.lastPrune = now
	return removed
}

// RateLimit allows perMinute requests per client IP with the given burst.
// A non-positive perMinute disables limiting.
func RateLimit(perMinute, burst int, log *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	store := newLimiterStore(perMinute, burst)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			log.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
