package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"cv-improver/internal/shared/server/respond"
)

// RateLimitRule is a token bucket: Rate tokens per second, up to Burst.
type RateLimitRule struct {
	Rate  rate.Limit
	Burst int
}

// PerMinute builds a rule allowing n requests per minute with a burst of n.
func PerMinute(n int) RateLimitRule {
	if n <= 0 {
		return RateLimitRule{}
	}
	return RateLimitRule{Rate: rate.Limit(float64(n) / 60.0), Burst: n}
}

const (
	// ipShare scales the rule for the per-address bucket so a few sessions
	// behind one address are not starved.
	ipShare = 4
	// limiterIdleTTL is how long an unused bucket is kept. Buckets idle past
	// their refill time are full and can be dropped without changing limits.
	limiterIdleTTL = 10 * time.Minute
)

func (r RateLimitRule) scaled(n int) RateLimitRule {
	return RateLimitRule{Rate: r.Rate * rate.Limit(n), Burst: r.Burst * n}
}

// refill is how long an empty bucket takes to fill up.
func (r RateLimitRule) refill() time.Duration {
	return time.Duration(float64(r.Burst) / float64(r.Rate) * float64(time.Second))
}

// RateLimiter keeps one token bucket per key and evicts idle ones.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	keep     time.Duration
	lastSeen time.Time
}

type bucket struct {
	key  string
	rule RateLimitRule
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		now:      now,
		idleTTL:  limiterIdleTTL,
	}
}

// RateLimit limits requests per session and per client address. A request
// must fit both buckets, so dropping the session cookie does not reset the
// limit. A zero rule disables limiting.
func RateLimit(rule RateLimitRule, limiter *RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		var buckets []bucket
		if id := strings.TrimSpace(SessionIDFromContext(c)); id != "" {
			buckets = append(buckets, bucket{key: "session:" + id, rule: rule})
		}
		if ip := strings.TrimSpace(c.ClientIP()); ip != "" {
			buckets = append(buckets, bucket{key: "ip:" + ip, rule: rule.scaled(ipShare)})
		}
		allowed, retryAfter := limiter.allow(buckets...)
		if allowed {
			c.Next()
			return
		}
		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Allow reports whether key may proceed now, and otherwise how long to wait.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	return l.allow(bucket{key: key, rule: rule})
}

// allow takes one token from every bucket or from none of them.
func (l *RateLimiter) allow(buckets ...bucket) (bool, time.Duration) {
	if l == nil || len(buckets) == 0 {
		return true, 0
	}
	now := l.now()
	reservations := make([]*rate.Reservation, 0, len(buckets))
	cancel := func() {
		for _, res := range reservations {
			res.CancelAt(now)
		}
	}
	for _, b := range buckets {
		if b.rule.Rate <= 0 || b.rule.Burst <= 0 {
			continue
		}
		res := l.limiter(b, now).ReserveN(now, 1)
		if !res.OK() {
			cancel()
			return false, time.Second
		}
		reservations = append(reservations, res)
		if delay := res.DelayFrom(now); delay > 0 {
			cancel()
			return false, delay
		}
	}
	return true, 0
}

func (l *RateLimiter) limiter(b bucket, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)
	e, ok := l.limiters[b.key]
	if !ok {
		e = &limiterEntry{
			lim:  rate.NewLimiter(b.rule.Rate, b.rule.Burst),
			keep: max(l.idleTTL, b.rule.refill()),
		}
		l.limiters[b.key] = e
	}
	e.lastSeen = now
	return e.lim
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > e.keep {
			delete(l.limiters, key)
		}
	}
}

// Len reports the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
