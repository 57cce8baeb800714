package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	var out domain.DashboardStats
	if ok, err := c.Get(ctx, "stats:dashboard", &out); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.DashboardStats{TotalReviews: 3, TotalProperties: 1, AverageRating: 9.25}
	if err := c.Set(ctx, "stats:dashboard", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err := c.Get(ctx, "stats:dashboard", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.TotalReviews != 3 || out.AverageRating != 9.25 {
		t.Fatalf("unexpected cached value: %+v", out)
	}

	if err := c.Del(ctx, "stats:dashboard"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "stats:dashboard", &out); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(11 * time.Second)

	var out map[string]int
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected key to expire")
	}
}
