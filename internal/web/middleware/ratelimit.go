package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// windowBucket tracks request timestamps within the trailing window
// for a single client.
type windowBucket struct {
	timestamps []time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimiter enforces a per-client request limit over a trailing
// window using an exact timestamp log. Denied requests do not consume
// quota: the window is only modified when a request is admitted.
type RateLimiter struct {
	buckets     sync.Map // string -> *windowBucket
	window      time.Duration
	limit       int
	cleanupTick *time.Ticker
	stopCleanup chan struct{}
	cleanupWG   sync.WaitGroup
}

// NewRateLimiter creates a rate limiter allowing limit requests per
// window for each client key. Idle buckets are evicted in the
// background until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	cleanupInterval := window
	if cleanupInterval < time.Second {
		cleanupInterval = time.Second
	}

	rl := &RateLimiter{
		window:      window,
		limit:       limit,
		cleanupTick: time.NewTicker(cleanupInterval),
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupWG.Add(1)
	go rl.cleanupLoop()

	return rl
}

// Allow reports whether a request from the given client key is
// admitted, and if not, how many seconds until a slot frees up.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	v, _ := rl.buckets.LoadOrStore(key, &windowBucket{})
	bucket := v.(*windowBucket)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now
	bucket.trimExpired(now.Add(-rl.window))

	if len(bucket.timestamps) >= rl.limit {
		retryAfter := 1
		if len(bucket.timestamps) > 0 {
			oldest := bucket.timestamps[0]
			if secs := int(time.Until(oldest.Add(rl.window)).Seconds()); secs > retryAfter {
				retryAfter = secs
			}
		}
		return false, retryAfter
	}

	bucket.timestamps = append(bucket.timestamps, now)
	return true, 0
}

// trimExpired drops timestamps at or before the cutoff. Caller holds
// the bucket mutex.
func (b *windowBucket) trimExpired(cutoff time.Time) {
	valid := 0
	for valid < len(b.timestamps) && !b.timestamps[valid].After(cutoff) {
		valid++
	}
	if valid > 0 {
		remaining := make([]time.Time, len(b.timestamps)-valid)
		copy(remaining, b.timestamps[valid:])
		b.timestamps = remaining
	}
}

func (rl *RateLimiter) cleanupLoop() {
	defer rl.cleanupWG.Done()

	for {
		select {
		case <-rl.cleanupTick.C:
			rl.evictIdleBuckets()
		case <-rl.stopCleanup:
			return
		}
	}
}

// evictIdleBuckets drops buckets idle for at least two full windows,
// so one-off clients do not accumulate forever.
func (rl *RateLimiter) evictIdleBuckets() {
	cutoff := time.Now().Add(-rl.window * 2)

	rl.buckets.Range(func(key, value any) bool {
		bucket := value.(*windowBucket)
		bucket.mu.Lock()
		idle := bucket.lastAccess.Before(cutoff)
		bucket.mu.Unlock()

		if idle {
			rl.buckets.Delete(key)
		}
		return true
	})
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTick.Stop()
	close(rl.stopCleanup)
	rl.cleanupWG.Wait()
}

// clientKey identifies the caller for rate limiting: the
// authenticated identity when present, the remote IP otherwise.
func clientKey(r *http.Request) string {
	if identity := IdentityFromContext(r.Context()); identity != "" {
		return identity
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit returns middleware that rejects requests over the limit
// with 429 and a Retry-After header.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := rl.Allow(clientKey(r))
			if !allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
