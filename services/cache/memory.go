package cachesvc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// memoryCache is the in-process backend: a mutex-guarded table, one writer
// per key at a time, no locks held across I/O.
type memoryCache struct {
	mu    sync.RWMutex
	table map[string]entry
	now   func() time.Time
}

var _ core.Cache = (*memoryCache)(nil)

func NewMemoryCache() *memoryCache {
	return &memoryCache{
		table: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.table[key]
	c.mu.RUnlock()

	if !ok {
		return nil, core.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.table, key)
		c.mu.Unlock()
		return nil, core.ErrCacheMiss
	}

	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	val := make([]byte, len(value))
	copy(val, value)

	e := entry{value: val}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.table[key] = e
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.table, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.table {
		if strings.HasPrefix(key, prefix) {
			delete(c.table, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len reports live entries; test helper.
func (c *memoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.table)
}
