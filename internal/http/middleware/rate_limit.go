package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"qissa-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-IP limiter for the credential
// endpoints, mostly to slow down password guessing.
type RateLimiter struct {
	limit int
	mu    sync.Mutex
	items map[string]*rateEntry
}

type rateEntry struct {
	count int
	reset time.Time
}

func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit: limit,
		items: make(map[string]*rateEntry),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()
		entry, ok := rl.items[ip]
		if !ok || now.After(entry.reset) {
			entry = &rateEntry{reset: now.Add(time.Minute)}
			rl.items[ip] = entry
		}
		entry.count++
		count := entry.count
		reset := entry.reset
		rl.mu.Unlock()

		if count > rl.limit {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())))
			utils.RespondError(c, utils.NewAppError(http.StatusTooManyRequests, "RATE_LIMIT", "Too many requests"))
			c.Abort()
			return
		}

		c.Next()
	}
}
