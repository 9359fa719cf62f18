package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mall-api/internal/metrics"
)

type visitor struct {
	limiter     *rate.Limiter
	windowStart time.Time
	lastSeen    time.Time
}

// RateLimiter admits at most burst requests per client address per fixed
// window. Each window starts with a full bucket that refills by less than one
// token before the window ends, so the budget never exceeds burst.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRateLimiter(requests int, window time.Duration, m *metrics.Metrics) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window),
		burst:    requests,
		window:   window,
		metrics:  m,
		now:      time.Now,
	}
}

// allow reports whether key may make a request now and, if not, how long
// until its window resets.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok || !now.Before(v.windowStart.Add(rl.window)) {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst), windowStart: now}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	if v.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, v.windowStart.Add(rl.window).Sub(now)
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := rl.allow(clientAddress(r))
			if !allowed {
				if rl.metrics != nil {
					rl.metrics.RateLimited.Inc()
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				respondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Cleanup forgets clients idle for a whole window until ctx is done. A
// forgotten client's window has ended, so it would start fresh anyway.
func (rl *RateLimiter) Cleanup(ctx context.Context) error {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	evicted := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			evicted++
		}
	}
	return evicted
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
