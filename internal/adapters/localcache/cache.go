// Package localcache is an in-process domain.Cache used when no Redis
// address is configured.
package localcache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"lightbnb/internal/adapters/observability"
)

// Values are kept as JSON so readers never share memory with writers.
type Cache struct {
	items *ccache.Cache[[]byte]

	mu       sync.Mutex
	counters map[string]int64 // never evicted
}

func New(maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		items:    ccache.New(ccache.Configure[[]byte]().MaxSize(maxSize)),
		counters: make(map[string]int64),
	}
}

// Stop ends the ccache worker goroutine.
func (c *Cache) Stop() { c.items.Stop() }

// Get also reads counters, which decode as JSON numbers like a Redis integer.
func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	n, isCounter := c.counters[key]
	c.mu.Unlock()
	if isCounter {
		observability.ObserveCache("local", "hit")
		return true, json.Unmarshal(strconv.AppendInt(nil, n, 10), dst)
	}

	item := c.items.Get(key)
	if item == nil || item.Expired() {
		observability.ObserveCache("local", "miss")
		return false, nil
	}
	observability.ObserveCache("local", "hit")
	return true, json.Unmarshal(item.Value(), dst)
}

func (c *Cache) Set(_ context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("local", "set")
	c.items.Set(key, b, time.Duration(ttlSec)*time.Second)
	return nil
}

func (c *Cache) Incr(_ context.Context, key string) (int64, error) {
	observability.ObserveCache("local", "incr")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}
