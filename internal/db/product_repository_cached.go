package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CachedProductRepository puts a Redis cache-aside layer in front of any
// ProductRepository. Every write, including inventory adjustments, evicts
// the product and the list key.
type CachedProductRepository struct {
	repo   ProductRepository
	cache  *cache.RedisCache
	logger *logrus.Logger
}

func NewCachedProductRepository(repo ProductRepository, cache *cache.RedisCache, logger *logrus.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Cache key helpers
func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func allProductsKey() string {
	return "products:all"
}

// GetAll returns all products (with caching)
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cacheKey := allProductsKey()

	var products []models.Product
	err := r.cache.Get(ctx, cacheKey, &products)
	if err == nil {
		r.logger.Debug("Cache hit: all products")
		return products, nil
	}
	r.logCacheError(err, cacheKey)

	products, err = r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, products); err != nil {
		r.logger.WithError(err).Warn("Failed to cache products")
	}

	return products, nil
}

// GetByID returns a single product (with caching)
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		r.logger.WithField("product_id", id).Debug("Cache hit: product")
		return &product, nil
	}
	r.logCacheError(err, cacheKey)

	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, cacheKey, p); err != nil {
		r.logger.WithError(err).Warn("Failed to cache product")
	}

	return p, nil
}

func (r *CachedProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.repo.GetBySKU(ctx, sku)
}

// Create inserts a new product and invalidates the list cache
func (r *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.repo.Create(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

func (r *CachedProductRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	updated, err := r.repo.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, product.ID)
	return updated, nil
}

func (r *CachedProductRepository) SetInventory(ctx context.Context, id string, quantity int, now time.Time) (*models.Product, error) {
	product, err := r.repo.SetInventory(ctx, id, quantity, now)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return product, nil
}

// Delete removes a product and invalidates cache
func (r *CachedProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := r.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return product, nil
}

func (r *CachedProductRepository) AdjustInventory(ctx context.Context, id string, delta int, now time.Time) (*models.Product, error) {
	product, err := r.repo.AdjustInventory(ctx, id, delta, now)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return product, nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, productKey(id), allProductsKey()); err != nil {
		r.logger.WithError(err).WithField("product_id", id).Warn("Failed to invalidate product cache")
		return
	}
	r.logger.WithField("product_id", id).Debug("Cache invalidated: product and all products")
}

func (r *CachedProductRepository) logCacheError(err error, key string) {
	if errors.Is(err, redis.Nil) {
		r.logger.WithField("key", key).Debug("Cache miss")
		return
	}
	r.logger.WithError(err).WithField("key", key).Warn("Cache error")
}
