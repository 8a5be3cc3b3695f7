package bands

import (
	"context"
	"time"

	"github.com/okian/compensa/internal/domain/compensation"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL is how long a resolved band is reused.
	DefaultTTL      = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// Cached memoizes successful lookups of an upstream BandLookup for a TTL.
// Errors are never cached.
type Cached struct {
	next  compensation.BandLookup
	cache *cache.Cache
}

// NewCached wraps next. A non-positive ttl uses DefaultTTL.
func NewCached(next compensation.BandLookup, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{next: next, cache: cache.New(ttl, cleanupInterval)}
}

// Lookup implements compensation.BandLookup.
func (c *Cached) Lookup(ctx context.Context, role, level string) (model.Band, error) {
	k := keyOf(role, level)
	ck := k.role + "\x00" + k.level
	if v, found := c.cache.Get(ck); found {
		return v.(model.Band), nil
	}

	b, err := c.next.Lookup(ctx, role, level)
	if err != nil {
		return model.Band{}, err
	}
	c.cache.SetDefault(ck, b)
	return b, nil
}

// Flush drops every cached band.
func (c *Cached) Flush() { c.cache.Flush() }

// Len returns the number of cached bands, including expired ones not yet
// cleaned up.
func (c *Cached) Len() int { return c.cache.ItemCount() }
