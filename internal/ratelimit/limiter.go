// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "betti",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total rate limit rejections",
	},
	[]string{"limit_type"},
)

// Config holds request-rate limiting configuration for the data plane.
// This is orthogonal to admission control: the limiter smooths request
// arrival per client, the balancer gates how much admitted work runs.
type Config struct {
	GlobalRate  rate.Limit // requests per second across all clients
	GlobalBurst int

	PerIPRate  rate.Limit
	PerIPBurst int

	// CleanupInterval bounds memory held by idle per-IP limiters.
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GlobalRate:      100,
		GlobalBurst:     200,
		PerIPRate:       10,
		PerIPBurst:      20,
		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter enforces global and per-IP request rates.
type Limiter struct {
	config Config

	global *rate.Limiter
	perIP  map[string]*rate.Limiter
	mu     sync.Mutex

	lastCleanup time.Time
}

// New creates a request limiter with the given config.
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		perIP:       make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from clientIP fits under the limits.
func (l *Limiter) Allow(clientIP string) bool {
	if !l.global.Allow() {
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	if !l.ipLimiter(clientIP).Allow() {
		rateLimitExceeded.WithLabelValues("per_ip").Inc()
		return false
	}

	l.maybeCleanup()
	return true
}

func (l *Limiter) ipLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.perIP[ip]
	if !exists {
		limiter = rate.NewLimiter(l.config.PerIPRate, l.config.PerIPBurst)
		l.perIP[ip] = limiter
	}
	return limiter
}

// maybeCleanup drops all per-IP limiters once the cleanup interval has
// passed. Dropping wholesale resets idle clients' burst budgets, which is
// acceptable for this traffic shape.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	l.perIP = make(map[string]*rate.Limiter)
	l.lastCleanup = time.Now()
}

// Middleware rejects requests over the configured rates with 429.
func Middleware(l *Limiter, clientIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
