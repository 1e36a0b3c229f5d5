package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowEnforcesBurst(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow("client-a") || !l.Allow("client-a") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if l.Allow("client-a") {
		t.Error("Expected third immediate request to be denied")
	}

	// Separate keys have independent budgets.
	if !l.Allow("client-b") {
		t.Error("Expected fresh key to be allowed")
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	l := NewLimiter(1, 1)
	handler := l.Middleware(IPKeyFunc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/grade-submission", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
}

func TestCleanupOldLimiters(t *testing.T) {
	l := NewLimiter(1, 1)
	l.Allow("stale")

	l.CleanupOldLimiters(time.Nanosecond)

	l.mu.Lock()
	_, exists := l.limiters["stale"]
	l.mu.Unlock()
	if exists {
		t.Error("Expected idle limiter to be removed")
	}
}
