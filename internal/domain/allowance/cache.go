package allowance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type CacheKey struct {
	SubprojectID string `json:"subprojectId"`
	EmployeeID   string `json:"employeeId"`
	DaysPerWeek  int    `json:"daysPerWeek"`
}

// Canonical renders the key with its fields in a fixed order so identical
// input tuples always map to the same entry.
func (k CacheKey) Canonical() string {
	return fmt.Sprintf("calc:%s:%s:%d", k.SubprojectID, k.EmployeeID, k.DaysPerWeek)
}

// Cache is a plain time-bounded memo for calculation results. There is no
// eviction beyond TTL expiry: concurrent computes for the same key may both
// write, and the last writer wins.
type Cache interface {
	Get(ctx context.Context, key CacheKey) (Result, bool, error)
	Put(ctx context.Context, key CacheKey, result Result, ttl time.Duration) error
	Invalidate(ctx context.Context, key CacheKey) error
	SweepExpired(ctx context.Context) (int, error)
}

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key CacheKey) (Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key.Canonical()]
	if !ok || !c.now().Before(entry.expiresAt) {
		return Result{}, false, nil
	}
	return entry.result, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key CacheKey, result Result, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key.Canonical()] = memoryEntry{
		result:    result,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key CacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key.Canonical())
	return nil
}

func (c *MemoryCache) SweepExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for canonical, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, canonical)
			removed++
		}
	}
	return removed, nil
}
