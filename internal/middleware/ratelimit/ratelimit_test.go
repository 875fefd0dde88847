package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllowWithinWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("4th request should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients are independent")
	}
	if got := rl.RetryAfter("1.2.3.4"); got != 60 {
		t.Errorf("RetryAfter = %d, want 60", got)
	}

	*clock = clock.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("new window should allow again")
	}
	if rl.Rejected() != 1 {
		t.Errorf("Rejected = %d, want 1", rl.Rejected())
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 10)
	rl.Allow("a")
	*clock = clock.Add(11 * time.Minute)
	rl.Allow("b")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "ip" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cells", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cells", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
	if rl.requestsPerMinute != 60 {
		t.Errorf("zero config should use defaults, got %d", rl.requestsPerMinute)
	}
}
