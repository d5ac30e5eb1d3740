package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/product"
)

// ProductCache defines the interface for product caching operations.
type ProductCache interface {
	// Get retrieves a product from cache by ID.
	// Returns nil if the product is not found in cache.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// Set stores a product in cache with the configured TTL.
	Set(ctx context.Context, p *domain.Product) error

	// Delete removes a product from cache by ID.
	Delete(ctx context.Context, id string) error
}

// cachedProduct is the cache wire format of a product.
type cachedProduct struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      float64         `json:"price"`
	Email      string          `json:"email"`
	CreatedAt  time.Time       `json:"created_at"`
	Attributes document.Fields `json:"attributes"`
}

// RedisProductCache implements ProductCache using Redis as the backing store.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisProductCache creates a new Redis-backed product cache.
func NewRedisProductCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ProductCache {
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cacheKey generates a Redis key for a product ID.
func (c *RedisProductCache) cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get retrieves a product from Redis cache.
func (c *RedisProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	data, err := c.client.Get(ctx, c.cacheKey(id)).Bytes()
	if err == redis.Nil {
		c.log.Debug("cache miss", zap.String("product_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}

	var cp cachedProduct
	if err := json.Unmarshal(data, &cp); err != nil {
		c.log.Error("failed to unmarshal cached product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("product_id", id))
	return &domain.Product{
		ID:         cp.ID,
		Name:       cp.Name,
		Price:      cp.Price,
		Email:      cp.Email,
		CreatedAt:  cp.CreatedAt,
		Attributes: cp.Attributes,
	}, nil
}

// Set stores a product in Redis cache with TTL.
func (c *RedisProductCache) Set(ctx context.Context, p *domain.Product) error {
	if p == nil {
		return fmt.Errorf("cannot cache nil product")
	}

	data, err := json.Marshal(cachedProduct{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Email:      p.Email,
		CreatedAt:  p.CreatedAt,
		Attributes: p.Attributes,
	})
	if err != nil {
		c.log.Error("failed to marshal product for cache", zap.String("product_id", p.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(p.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("product_id", p.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached product", zap.String("product_id", p.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a product from Redis cache.
func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("product_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("product_id", id))
	return nil
}
