package classification

import (
	"context"
	"fmt"
	"sync"
)

// Cached memoizes every lookup of the wrapped Classification by argument.
// This is safe because classification tables are immutable for the process
// lifetime; the cache only needs to be dropped on an explicit reload via
// Invalidate. Negative results (missing ids) are cached too.
//
// All methods are safe for concurrent use.
type Cached struct {
	inner Classification

	mu       sync.RWMutex
	entries  map[int]*Entry
	levels   map[int]*string
	all      map[string][]Entry
	mappings map[string]map[int]int
}

// NewCached wraps a Classification with a memoization layer.
func NewCached(inner Classification) *Cached {
	c := &Cached{inner: inner}
	c.reset()
	return c
}

func (c *Cached) reset() {
	c.entries = make(map[int]*Entry)
	c.levels = make(map[int]*string)
	c.all = make(map[string][]Entry)
	c.mappings = make(map[string]map[int]int)
}

// Invalidate drops all cached results. Call after an explicit reload of the
// backing table; nothing else ever invalidates the cache.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Levels returns the level names ordered coarsest first.
func (c *Cached) Levels() []string {
	return c.inner.Levels()
}

// GetByID returns the entry with the given id, or (nil, nil) if absent.
func (c *Cached) GetByID(ctx context.Context, id int) (*Entry, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	entry, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = entry
	c.mu.Unlock()
	return entry, nil
}

// GetAll returns all entries, filtered to one level when level != "".
func (c *Cached) GetAll(ctx context.Context, level string) ([]Entry, error) {
	c.mu.RLock()
	entries, ok := c.all[level]
	c.mu.RUnlock()
	if ok {
		return entries, nil
	}

	entries, err := c.inner.GetAll(ctx, level)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.all[level] = entries
	c.mu.Unlock()
	return entries, nil
}

// GetLevelByID returns the level of the given id, or ("", nil) if unknown.
func (c *Cached) GetLevelByID(ctx context.Context, id int) (string, error) {
	c.mu.RLock()
	level, ok := c.levels[id]
	c.mu.RUnlock()
	if ok {
		return *level, nil
	}

	resolved, err := c.inner.GetLevelByID(ctx, id)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.levels[id] = &resolved
	c.mu.Unlock()
	return resolved, nil
}

// AggregationMapping memoizes mappings by (fromLevel, toLevel). Invalid
// level pairs are not cached; they fail identically on every call.
func (c *Cached) AggregationMapping(ctx context.Context, fromLevel, toLevel string) (map[int]int, error) {
	key := fmt.Sprintf("%s\x00%s", fromLevel, toLevel)

	c.mu.RLock()
	mapping, ok := c.mappings[key]
	c.mu.RUnlock()
	if ok {
		return mapping, nil
	}

	mapping, err := c.inner.AggregationMapping(ctx, fromLevel, toLevel)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mappings[key] = mapping
	c.mu.Unlock()
	return mapping, nil
}
