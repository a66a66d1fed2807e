package strava

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRateLimiterUpdateFromHeaders(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Limit", "200,2000")
	h.Set("X-RateLimit-Usage", "34,512")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != 166 || daily != 1488 {
		t.Errorf("Status() = (%d, %d), want (166, 1488)", short, daily)
	}

	// malformed headers are ignored
	h.Set("X-RateLimit-Usage", "abc")
	r.UpdateFromHeaders(h)
	if s, d := r.Status(); s != 166 || d != 1488 {
		t.Errorf("Status() after malformed header = (%d, %d)", s, d)
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	r := NewRateLimiter()
	r.short.usage = r.short.limit

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); err == nil {
		t.Fatal("Wait() should fail when the short window is exhausted and ctx expires")
	}
}

func TestRateLimiterWaitCountsUsage(t *testing.T) {
	r := NewRateLimiter()
	r.minInterval = 0

	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if short, daily := r.Status(); short != 97 || daily != 997 {
		t.Errorf("Status() = (%d, %d), want (97, 997)", short, daily)
	}
}
