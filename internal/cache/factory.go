package cache

import (
	"context"
	"fmt"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
)

// NewFromConfig builds the backend named by cfg.Backend and wraps it in a
// GenericCacheService. A disabled cache yields a service whose reads miss.
func NewFromConfig(ctx context.Context, cfg platformconfig.CacheConfig) (*GenericCacheService, error) {
	options := ServiceOptions{Enabled: cfg.Enabled, TTL: cfg.TTL, Prefix: cfg.Prefix}
	if !cfg.Enabled {
		log.Info("Cache disabled")
		return NewGenericCacheService(nil, options), nil
	}

	backend := CacheType(cfg.Backend)
	switch backend {
	case CacheTypeMemory:
		log.Info("Cache backend: memory (max %d bytes)", cfg.MaxMemory)
		return NewGenericCacheService(NewMemoryCache(cfg.MaxMemory, cfg.CleanupInterval), options), nil
	case CacheTypeRedis:
		redisCache, err := NewRedisCache(ctx, RedisOptions{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			Database:     cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Cache backend: redis at %s", cfg.Redis.Address)
		return NewGenericCacheService(redisCache, options), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, cfg.Backend)
	}
}
