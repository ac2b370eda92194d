package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client's bucket is kept after its last request.
const clientIdleTTL = 10 * time.Minute

// clientLimiters hands out one token bucket per client IP. Buckets of idle
// clients expire so the set does not grow with every address ever seen.
type clientLimiters struct {
	mu      sync.Mutex
	buckets *cache.Cache
	limit   rate.Limit
	burst   int
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		buckets: cache.New(clientIdleTTL, clientIdleTTL),
		limit:   limit,
		burst:   burst,
	}
}

func (l *clientLimiters) forClient(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	l.buckets.SetDefault(ip, lim)
	return lim.(*rate.Limiter)
}

// retryAfter returns zero when the client may proceed now, otherwise how long
// it has to wait. A rejected request does not consume a token.
func (l *clientLimiters) retryAfter(ip string) time.Duration {
	res := l.forClient(ip).Reserve()
	if !res.OK() {
		return time.Second
	}
	delay := res.Delay()
	if delay > 0 {
		res.Cancel()
	}
	return delay
}

// RateLimiter rejects clients that exceed r requests per second with burst b.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := newClientLimiters(r, b)
	return func(c *gin.Context) {
		if wait := limiters.retryAfter(c.ClientIP()); wait > 0 {
			seconds := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
