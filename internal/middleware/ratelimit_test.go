package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestMemoryLimiterRefills(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "k"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("third request allowed")
	}
	if ok, _ := l.Allow(ctx, "other"); !ok {
		t.Error("keys share a bucket")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("bucket did not refill")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	serve := func(l Limiter) int {
		r := gin.New()
		r.POST("/signin", RateLimit(l, "signin", zerolog.Nop()), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signin", nil))
		return w.Code
	}

	limited := NewMemoryLimiter(1, time.Hour)
	if got := serve(limited); got != http.StatusNoContent {
		t.Errorf("first request: %d", got)
	}
	if got := serve(limited); got != http.StatusTooManyRequests {
		t.Errorf("second request: %d, want 429", got)
	}
	if got := serve(failingLimiter{}); got != http.StatusNoContent {
		t.Errorf("limiter error: %d, want pass-through", got)
	}
}

type stubLimiter struct {
	ok    bool
	calls int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.calls++
	return l.ok, nil
}

func TestFallbackLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("primary decides while healthy", func(t *testing.T) {
		backup := &stubLimiter{ok: true}
		l := NewFallbackLimiter(&stubLimiter{ok: false}, backup, zerolog.Nop())
		if ok, err := l.Allow(ctx, "k"); ok || err != nil {
			t.Errorf("Allow = %v, %v; want primary rejection", ok, err)
		}
		if backup.calls != 0 {
			t.Error("fallback consulted while primary healthy")
		}
	})

	t.Run("memory budget applies when primary fails", func(t *testing.T) {
		l := NewFallbackLimiter(failingLimiter{}, NewMemoryLimiter(1, time.Hour), zerolog.Nop())
		if ok, err := l.Allow(ctx, "k"); !ok || err != nil {
			t.Fatalf("first: %v, %v", ok, err)
		}
		if ok, err := l.Allow(ctx, "k"); ok || err != nil {
			t.Errorf("second: %v, %v; want rejected without error", ok, err)
		}
	})
}
