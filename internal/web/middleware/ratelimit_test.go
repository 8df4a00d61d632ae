package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("client")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, retryAfter := rl.Allow("client")
	if allowed {
		t.Fatal("request over the limit should be denied")
	}
	if retryAfter < 1 {
		t.Errorf("expected Retry-After of at least 1 second, got %d", retryAfter)
	}
}

func TestRateLimiter_DenialDoesNotConsumeQuota(t *testing.T) {
	rl := NewRateLimiter(2, 200*time.Millisecond)
	defer rl.Stop()

	rl.Allow("client")
	time.Sleep(100 * time.Millisecond)
	rl.Allow("client")

	// Denied attempts must not extend the window: once the first
	// admitted request ages out, a slot frees up regardless of how
	// many denials happened in between.
	for _i := 0; _i < 5; _i++ {
		if allowed, _ := rl.Allow("client"); allowed {
			t.Fatal("request over the limit should be denied")
		}
	}

	time.Sleep(150 * time.Millisecond)

	if allowed, _ := rl.Allow("client"); !allowed {
		t.Fatal("expected a free slot after the oldest request expired")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 100*time.Millisecond)
	defer rl.Stop()

	if allowed, _ := rl.Allow("client"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _ := rl.Allow("client"); allowed {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(150 * time.Millisecond)

	if allowed, _ := rl.Allow("client"); !allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRateLimiter_IndependentClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	if allowed, _ := rl.Allow("alice"); !allowed {
		t.Fatal("alice's first request should be allowed")
	}
	if allowed, _ := rl.Allow("bob"); !allowed {
		t.Fatal("bob must not be affected by alice's quota")
	}
	if allowed, _ := rl.Allow("alice"); allowed {
		t.Fatal("alice's second request should be denied")
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)
	defer rl.Stop()

	rl.Allow("client")

	// Idle for well over two windows; the cleanup loop ticks at
	// least every second.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := rl.buckets.Load("client"); !ok {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("idle bucket was not evicted")
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on 429")
	}

	// Different remote IP, same port: separate quota.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a different client, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware_PrefersIdentityOverIP(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req = req.WithContext(SetIdentityInContext(req.Context(), "alice"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Same user from a different address shares the quota.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "192.0.2.9:9999"
	again = again.WithContext(SetIdentityInContext(again.Context(), "alice"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, again)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same identity, got %d", rec.Code)
	}
}
