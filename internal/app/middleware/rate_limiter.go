package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"fire-alert-service/internal/error/code"
	"fire-alert-service/internal/error/response"
)

// Limit types
const (
	LimitByIP       = "ip"
	LimitByPath     = "path"
	LimitByCombined = "combined"
)

// RateLimiterConfig configures a rate limiting middleware
type RateLimiterConfig struct {
	Rate       float64       // requests per second
	Burst      int           // bucket size
	ExpiryTime time.Duration // idle limiters are dropped after this long
	LimitType  string        // ip, path or combined
}

// DefaultRateLimiterConfig allows one request per second with bursts of five per IP
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       1,
	Burst:      5,
	ExpiryTime: time.Hour,
	LimitType:  LimitByIP,
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per key for a single middleware instance
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	expiry    time.Duration
	lastSweep time.Time
}

func newLimiterStore(cfg RateLimiterConfig) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(cfg.Rate),
		burst:     cfg.Burst,
		expiry:    cfg.ExpiryTime,
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expiry > 0 && now.Sub(s.lastSweep) > s.expiry {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > s.expiry {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimiter creates a rate limiting middleware. Requests over the limit get
// ErrTooManyRequests.
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	cfg := DefaultRateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	store := newLimiterStore(cfg)

	return func(c *gin.Context) {
		var key string
		switch cfg.LimitType {
		case LimitByPath:
			key = c.Request.URL.Path
		case LimitByCombined:
			key = c.ClientIP() + ":" + c.Request.URL.Path
		default:
			key = c.ClientIP()
		}

		if !store.allow(key) {
			response.Abort(c, code.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// IPRateLimiter limits each client IP
func IPRateLimiter(r float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: r, Burst: burst, LimitType: LimitByIP})
}

// CombinedRateLimiter limits each client IP on each path
func CombinedRateLimiter(r float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: r, Burst: burst, LimitType: LimitByCombined})
}
