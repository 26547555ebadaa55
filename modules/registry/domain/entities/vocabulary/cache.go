package vocabulary

import (
	"context"
	"sync"
)

// Cache holds vocabulary sets in process memory. Validation reads it on
// every staged record, so lookups must not hit the database; the vocabulary
// service invalidates it whenever a code changes.
type Cache struct {
	provider Provider

	mu   sync.RWMutex
	sets map[string]Set
}

func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

// Warmup loads every vocabulary from the provider, replacing the cached
// sets wholesale.
func (c *Cache) Warmup(ctx context.Context) error {
	sets, err := c.provider.Sets(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sets = sets
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached sets. The next Get reloads from the provider.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.sets = nil
	c.mu.Unlock()
}

// Get returns the set for one vocabulary, warming the cache first if it is
// cold. An unknown vocabulary yields an empty set, not an error.
func (c *Cache) Get(ctx context.Context, vocabulary string) (Set, error) {
	c.mu.RLock()
	sets := c.sets
	c.mu.RUnlock()

	if sets == nil {
		if err := c.Warmup(ctx); err != nil {
			return nil, err
		}
		c.mu.RLock()
		sets = c.sets
		c.mu.RUnlock()
	}
	set, ok := sets[vocabulary]
	if !ok {
		return Set{}, nil
	}
	return set, nil
}
