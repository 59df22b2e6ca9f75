package limit

import (
	"context"

	"walletcore/internal/models"
	"walletcore/internal/repositories/cache"
)

const definitionCachePrefix = "limit_definition"

type redisDefinitionCache struct {
	cache *cache.CacheService
}

// NewRedisDefinitionCache stores definitions as JSON under
// limit_definition:id:<id> with the cache service's default TTL.
func NewRedisDefinitionCache(cs *cache.CacheService) DefinitionCache {
	return &redisDefinitionCache{cache: cs}
}

func (c *redisDefinitionCache) GetDefinition(ctx context.Context, id string) (*models.LimitDefinition, error) {
	var def models.LimitDefinition
	found, err := c.cache.Get(ctx, c.cache.GenerateKey(definitionCachePrefix, "id", id), &def)
	if err != nil || !found {
		return nil, err
	}
	return &def, nil
}

func (c *redisDefinitionCache) SetDefinition(ctx context.Context, def *models.LimitDefinition) error {
	return c.cache.Set(ctx, c.cache.GenerateKey(definitionCachePrefix, "id", def.ID), def)
}
