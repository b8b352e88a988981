package pricing

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider remembers known prices of an upstream provider for a TTL.
// Unknown prices are not cached so a fresh observation shows up at once.
type CachedProvider struct {
	upstream Provider
	cache    *gocache.Cache
}

// NewCachedProvider wraps upstream with a cache of the given TTL.
func NewCachedProvider(upstream Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(item string, kind Kind, tf Timeframe) string {
	return item + "|" + kind.String() + "|" + string(tf)
}

// Price implements Provider.
func (c *CachedProvider) Price(ctx context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error) {
	key := cacheKey(item, kind, tf)
	if v, ok := c.cache.Get(key); ok {
		return v.(float64), true, nil
	}
	p, ok, err := c.upstream.Price(ctx, item, kind, tf)
	if err != nil || !ok {
		return p, ok, err
	}
	c.cache.SetDefault(key, p)
	return p, true, nil
}

// Flush drops every cached price.
func (c *CachedProvider) Flush() { c.cache.Flush() }
