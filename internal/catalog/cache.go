package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/glowgrace/booking-platform/pkg/logging"
)

type lister interface {
	Resolver
	ListActive(ctx context.Context) ([]*Service, error)
}

// Cache is a Redis read-through cache in front of the catalog repository.
// The catalog is read-mostly; appointment state is never cached here.
type Cache struct {
	repo   lister
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache wraps the repository with a Redis cache. A nil client disables
// caching and every call falls through to the repository.
func NewCache(repo lister, client *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if repo == nil {
		panic("catalog: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{repo: repo, redis: client, ttl: ttl, logger: logger}
}

func (c *Cache) serviceKey(id uuid.UUID) string {
	return "catalog:service:" + id.String()
}

const activeListKey = "catalog:services:active"

// GetByID returns a service, consulting Redis first. Cache errors are
// logged and treated as misses; ErrServiceNotFound is never cached.
func (c *Cache) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.serviceKey(id)).Bytes()
		switch {
		case err == nil:
			var svc Service
			if err := json.Unmarshal(data, &svc); err == nil {
				return &svc, nil
			}
			c.logger.Warn("catalog cache entry corrupt, refetching", "service_id", id)
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("catalog cache read failed", "error", err, "service_id", id)
		}
	}

	svc, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.serviceKey(id), svc)
	return svc, nil
}

// ListActive returns active services, consulting Redis first.
func (c *Cache) ListActive(ctx context.Context) ([]*Service, error) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, activeListKey).Bytes()
		switch {
		case err == nil:
			var services []*Service
			if err := json.Unmarshal(data, &services); err == nil {
				return services, nil
			}
			c.logger.Warn("catalog cache list corrupt, refetching")
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("catalog cache read failed", "error", err)
		}
	}

	services, err := c.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, activeListKey, services)
	return services, nil
}

// Invalidate drops cached entries after an administrative catalog edit.
func (c *Cache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if c.redis == nil {
		return nil
	}
	keys := []string{activeListKey}
	for _, id := range ids {
		keys = append(keys, c.serviceKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("catalog: cache invalidate: %w", err)
	}
	return nil
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("catalog cache marshal failed", "error", err, "key", key)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "error", err, "key", key)
	}
}

var _ Resolver = (*Cache)(nil)
