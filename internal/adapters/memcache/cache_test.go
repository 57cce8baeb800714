package memcache_test

import (
	"context"
	"testing"
	"time"

	"flex_reviews/internal/adapters/memcache"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestCache_RoundTripAndDelete(t *testing.T) {
	c := memcache.New(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "a", Score: 9.5}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok || got.Name != "a" || got.Score != 9.5 {
		t.Fatalf("unexpected: ok=%v err=%v got=%+v", ok, err, got)
	}

	_ = c.Del(ctx, "k")
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_ValuesAreCopies(t *testing.T) {
	c := memcache.New(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	in := map[string]float64{"cleanliness": 10}
	_ = c.Set(ctx, "k", in, 0)
	in["cleanliness"] = 1

	var out map[string]float64
	if ok, _ := c.Get(ctx, "k", &out); !ok || out["cleanliness"] != 10 {
		t.Fatalf("cached value changed with the source map: %v", out)
	}
}
