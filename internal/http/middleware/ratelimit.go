package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// defaultIdleEviction matches the chat session TTL default: a widget
// visitor idle that long has no live dialogue, so no bucket needs keeping.
const defaultIdleEviction = 30 * time.Minute

// RateLimiter throttles the public chat endpoint per client IP with a
// token bucket. Buckets idle past the eviction window are dropped so
// one-off widget visitors do not pin memory on a long-running process.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitorBucket
	perSecond float64
	burst     float64
	idleAfter time.Duration
	stop      chan struct{}
	once      sync.Once
}

type visitorBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst per client, and starts the idle-bucket sweeper.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitorBucket),
		perSecond: perSecond,
		burst:     float64(burst),
		idleAfter: defaultIdleEviction,
		stop:      make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the client identified by key is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[key]
	if !ok {
		rl.visitors[key] = &visitorBucket{tokens: rl.burst - 1, lastSeen: now}
		return rl.burst >= 1
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.perSecond
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Close stops the background sweeper.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-rl.idleAfter)
	rl.mu.Lock()
	for key, b := range rl.visitors {
		if b.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
	rl.mu.Unlock()
}

// clientIP derives the limiter key for a chat request: the header set by
// chi's RealIP middleware, else the connection address without its port so
// one visitor's requests share a bucket across connections.
func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit rejects chat requests exceeding the configured rate with
// 429 Too Many Requests.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
