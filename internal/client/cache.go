package client

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds decoded query results by key until they are invalidated.
// Concurrent loads of the same key share one request.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	gen     map[string]uint64
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]any),
		gen:     make(map[string]uint64),
	}
}

func EntriesKey(cycleID, tbID string) string {
	return "audit-entries/" + cycleID + "/" + tbID
}

func TrialBalanceKey(cycleID, tbID string) string {
	return "trial-balance/" + cycleID + "/" + tbID
}

// Invalidate drops the given keys. A load that started before the call will
// not repopulate them.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.gen[k]++
	}
}

// InvalidatePrefix drops every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			c.gen[k]++
		}
	}
}

func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

func cached[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v.(T), nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		gen := c.gen[key]
		c.mu.RUnlock()

		v, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen[key] == gen {
			c.entries[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
