package localcache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCache_RoundTripCopiesValue(t *testing.T) {
	c := New(10)
	defer c.Stop()
	ctx := context.Background()

	in := []string{"a", "b"}
	if err := c.Set(ctx, "k", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = "mutated"

	var out []string
	ok, err := c.Get(ctx, "k", &out)
	if !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out[0] != "a" {
		t.Fatalf("cached value aliased caller slice: %v", out)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10)
	defer c.Stop()
	ctx := context.Background()

	_ = c.Set(ctx, "gone", 1, 0)
	time.Sleep(5 * time.Millisecond)
	var v int
	if ok, _ := c.Get(ctx, "gone", &v); ok {
		t.Fatalf("zero ttl entry should be expired")
	}

	_ = c.Set(ctx, "k", 1, 60)
	if ok, _ := c.Get(ctx, "k", &v); !ok || v != 1 {
		t.Fatalf("live entry: ok=%v v=%d", ok, v)
	}
}

func TestCache_IncrConcurrent(t *testing.T) {
	c := New(10)
	defer c.Stop()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Incr(ctx, "gen")
		}()
	}
	wg.Wait()
	got, _ := c.Incr(ctx, "gen")
	if got != 51 {
		t.Fatalf("Incr = %d, want 51", got)
	}
}

func TestCache_CounterIsReadable(t *testing.T) {
	c := New(10)
	defer c.Stop()
	ctx := context.Background()

	_, _ = c.Incr(ctx, "gen")
	_, _ = c.Incr(ctx, "gen")
	var n int64
	ok, err := c.Get(ctx, "gen", &n)
	if !ok || err != nil || n != 2 {
		t.Fatalf("Get counter = %d ok=%v err=%v", n, ok, err)
	}
}
