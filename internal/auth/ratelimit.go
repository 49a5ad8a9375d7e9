package auth

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/config"
)

// LoginLimiter throttles login attempts per client IP and username. Failures
// are counted in a fixed window that opens with the first failure; reaching
// the limit blocks the pair for the lockout duration. A nil *LoginLimiter
// allows every attempt.
type LoginLimiter struct {
	mu       sync.Mutex
	windows  map[string]*loginWindow
	limit    int
	window   time.Duration
	lockout  time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type loginWindow struct {
	failures    int
	openedAt    time.Time
	lockedUntil time.Time
}

// NewLoginLimiter starts a limiter configured from the auth section.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		windows:  make(map[string]*loginWindow),
		limit:    cfg.MaxLoginAttempts,
		window:   cfg.RateLimitWindow,
		lockout:  cfg.LockoutDuration,
		interval: 5 * time.Minute,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if l.limit <= 0 {
		l.limit = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.sweepLoop()
	return l
}

// Stop ends the background sweep.
func (l *LoginLimiter) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stop) })
}

func limiterKey(ip, username string) string {
	return ip + "|" + strings.ToLower(username)
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller has to wait.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[limiterKey(ip, username)]
	if !ok {
		return true, 0
	}
	now := l.now()
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	if now.Sub(w.openedAt) > l.window || w.failures < l.limit {
		return true, 0
	}
	return false, l.lockout
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (l *LoginLimiter) RecordFailure(ip, username string) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := limiterKey(ip, username)
	w, ok := l.windows[key]
	if !ok || now.Sub(w.openedAt) > l.window {
		w = &loginWindow{openedAt: now}
		l.windows[key] = w
	}

	w.failures++
	if w.failures >= l.limit {
		w.lockedUntil = now.Add(l.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets earlier failures for the pair.
func (l *LoginLimiter) RecordSuccess(ip, username string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.windows, limiterKey(ip, username))
	l.mu.Unlock()
}

func (l *LoginLimiter) sweepLoop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.openedAt) > l.window && !now.Before(w.lockedUntil) {
			delete(l.windows, key)
		}
	}
}

// Middleware rejects throttled POSTs with 429 before the login handler runs.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		username := c.PostForm("username")
		if username == "" {
			c.Next()
			return
		}

		if ok, wait := l.Allow(c.ClientIP(), username); !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": fmt.Sprintf("Request was throttled. Expected available in %d seconds.", seconds),
			})
			return
		}
		c.Next()
	}
}
