package mw

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyFunc identifies the client a request is charged to.
type KeyFunc func(c *gin.Context) string

// ClientIP charges requests to the client address.
func ClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ClientLimiters hands out one token bucket per client. Buckets of clients
// that stay quiet for the idle period are evicted.
type ClientLimiters struct {
	mu       sync.Mutex
	limiters *cache.Cache
	r        rate.Limit
	b        int
	idle     time.Duration
}

// NewClientLimiters creates a limiter set allowing r requests per second with burst b.
func NewClientLimiters(r rate.Limit, b int, idle time.Duration) *ClientLimiters {
	return &ClientLimiters{
		limiters: cache.New(idle, 2*idle),
		r:        r,
		b:        b,
		idle:     idle,
	}
}

// Get returns the client's limiter, creating it on first use.
func (l *ClientLimiters) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.Set(key, lim, l.idle)
		return lim
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.limiters.Set(key, lim, l.idle)
	return lim
}

// Len reports how many clients currently hold a bucket.
func (l *ClientLimiters) Len() int {
	return l.limiters.ItemCount()
}

// RateLimiter rejects requests beyond the client's budget with 429.
func RateLimiter(limiters *ClientLimiters, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = ClientIP
	}
	return func(c *gin.Context) {
		lim := limiters.Get(key(c))
		if !lim.Allow() {
			retry := time.Second
			if lim.Limit() > 0 {
				retry = time.Duration(float64(time.Second) / float64(lim.Limit()))
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds()+0.999)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
