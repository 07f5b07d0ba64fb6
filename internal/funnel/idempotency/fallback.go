package idempotency

import (
	"context"

	"outreach_backend/platform/logger"
)

// FallbackCache tries a primary cache and degrades to a secondary one when
// the primary errors. A Redis outage then weakens replay to per-process
// instead of failing requests.
type FallbackCache struct {
	primary   Cache
	secondary Cache
	log       *logger.Logger
}

// NewFallbackCache creates a FallbackCache.
func NewFallbackCache(primary, secondary Cache, log *logger.Logger) *FallbackCache {
	return &FallbackCache{primary: primary, secondary: secondary, log: log}
}

func (c *FallbackCache) Get(ctx context.Context, key string) (StoredResponse, bool, error) {
	response, ok, err := c.primary.Get(ctx, key)
	if err == nil {
		return response, ok, nil
	}
	c.log.Warn("idempotency primary cache read failed, using fallback", "error", err)
	return c.secondary.Get(ctx, key)
}

func (c *FallbackCache) Set(ctx context.Context, key string, response StoredResponse) error {
	err := c.primary.Set(ctx, key, response)
	if err == nil {
		return nil
	}
	c.log.Warn("idempotency primary cache write failed, using fallback", "error", err)
	return c.secondary.Set(ctx, key, response)
}
