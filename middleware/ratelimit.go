package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxLimiterEntries = 10000

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterCache keeps one limiter per client. At capacity it first drops
// clients whose bucket has refilled, then the least recently seen one, so
// a client that is being throttled keeps its state.
type limiterCache struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	max     int
	now     func() time.Time
}

func newLimiterCache(r rate.Limit, burst int) *limiterCache {
	return &limiterCache{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   burst,
		max:     maxLimiterEntries,
		now:     time.Now,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := lc.now()
	if e, ok := lc.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	if len(lc.entries) >= lc.max {
		lc.evict(now)
	}
	e := &limiterEntry{limiter: rate.NewLimiter(lc.rate, lc.burst), lastSeen: now}
	lc.entries[key] = e
	return e.limiter
}

func (lc *limiterCache) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range lc.entries {
		if e.limiter.TokensAt(now) >= float64(lc.burst) {
			delete(lc.entries, k)
			continue
		}
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	if len(lc.entries) >= lc.max && oldestKey != "" {
		delete(lc.entries, oldestKey)
	}
}

// LoginRateLimit limits login submissions per client IP. GET requests pass.
func LoginRateLimit(r rate.Limit, burst int, fc *FlashCodec) gin.HandlerFunc {
	cache := newLimiterCache(r, burst)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if cache.get(c.ClientIP()).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "60")
		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
		fc.RedirectWithFlash(c, c.Request.URL.Path, FlashError, "Terlalu banyak percobaan login. Coba lagi sebentar lagi.")
		c.Abort()
	}
}
