package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"marketplace-service/internal/adapter/cache"
	domain "marketplace-service/internal/domain/product"
	"marketplace-service/internal/usecase/product"
)

// CachedProductRepository implements product.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedProductRepository struct {
	dbRepo product.Repository
	cache  cache.ProductCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedProductRepository creates a new instance of CachedProductRepository.
func NewCachedProductRepository(dbRepo product.Repository, cache cache.ProductCache, log *zap.Logger) product.Repository {
	return &CachedProductRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *CachedProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.dbRepo.Create(ctx, p)
}

// GetByID retrieves a product by ID using Cache-Aside pattern.
// Absent products are not cached.
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	key := fmt.Sprintf("product:%s", id)
	result, err, _ := r.group.Do(key, func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cached, err := r.cache.Get(ctx, id)
			if err == nil && cached != nil {
				return cached, nil
			}
		}

		p, err := r.dbRepo.GetByID(ctx, id)
		if err != nil || p == nil {
			return p, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, p); err != nil {
				r.log.Warn("failed to cache product", zap.String("id", id), zap.Error(err))
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p, _ := result.(*domain.Product)
	return p, nil
}

// List delegates to the DB repository.
func (r *CachedProductRepository) List(ctx context.Context, email string) ([]domain.Product, error) {
	return r.dbRepo.List(ctx, email)
}

// Latest delegates to the DB repository.
func (r *CachedProductRepository) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.dbRepo.Latest(ctx, limit)
}

// UpdateNamePrice updates the product in DB and invalidates the cache.
func (r *CachedProductRepository) UpdateNamePrice(ctx context.Context, id, name string, price float64) (matched, modified int64, err error) {
	matched, modified, err = r.dbRepo.UpdateNamePrice(ctx, id, name, price)
	if err != nil {
		return 0, 0, err
	}
	r.invalidate(ctx, id, "update")
	return matched, modified, nil
}

// Delete deletes the product from DB and invalidates the cache.
func (r *CachedProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	deleted, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, id, "delete")
	return deleted, nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache after "+op, zap.String("id", id), zap.Error(err))
	}
}
