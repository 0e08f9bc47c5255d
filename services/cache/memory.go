package cachesvc

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
)

// expired entries are dropped by the janitor at this interval even if never read again.
const memoryCleanupInterval = time.Minute

// memoryCache keeps JSON copies of the values, so callers never share them.
type memoryCache struct {
	store *gocache.Cache
}

var _ core.Cache = (*memoryCache)(nil)

func NewMemoryCache() core.Cache {
	return newMemoryCache(memoryCleanupInterval)
}

func newMemoryCache(cleanupInterval time.Duration) *memoryCache {
	return &memoryCache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v.([]byte), dest); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(key, data, ttl)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Delete(k)
	}
	return nil
}

func (c *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
	return nil
}
