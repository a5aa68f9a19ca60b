package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iproductrepo"
	redisdal "github.com/corray333/backend-labs/pos/internal/dal/redis"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
)

type cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedProductRepository wraps a product repository with a read-through cache.
// Only lookups by id are cached; filtered listings always hit the database.
type CachedProductRepository struct {
	repo  iproductrepo.IProductRepository
	cache cache
}

// NewCachedProductRepository creates a new cached product repository.
func NewCachedProductRepository(
	repo iproductrepo.IProductRepository,
	cache cache,
) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

func productKey(clientID, id int64) string {
	return fmt.Sprintf("catalog:%d:product:%d", clientID, id)
}

// Insert creates a product and primes the cache with it.
func (r *CachedProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	created, err := r.repo.Insert(ctx, p)
	if err != nil {
		return product.Product{}, err
	}

	if err := r.cache.Set(ctx, productKey(created.ClientID, created.ID), created); err != nil {
		slog.Warn("Failed to cache product", "product_id", created.ID, "error", err)
	}

	return created, nil
}

// Query serves id lookups from the cache and falls back to the repository for misses.
func (r *CachedProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	if len(filter.Ids) == 0 || len(filter.Categories) > 0 || filter.Available != nil {
		return r.repo.Query(ctx, filter)
	}

	result := make([]product.Product, 0, len(filter.Ids))
	var missing []int64
	for _, id := range filter.Ids {
		var p product.Product
		err := r.cache.Get(ctx, productKey(filter.ClientID, id), &p)
		switch {
		case err == nil:
			result = append(result, p)
		case errors.Is(err, redisdal.ErrCacheMiss):
			missing = append(missing, id)
		default:
			slog.Warn("Failed to read product from cache", "product_id", id, "error", err)
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := r.repo.Query(ctx, &product.QueryProductsModel{
		ClientID: filter.ClientID,
		Ids:      missing,
	})
	if err != nil {
		return nil, err
	}

	for _, p := range fetched {
		if err := r.cache.Set(ctx, productKey(p.ClientID, p.ID), p); err != nil {
			slog.Warn("Failed to cache product", "product_id", p.ID, "error", err)
		}
	}

	return append(result, fetched...), nil
}

// UpdatePrice updates the product and drops its cache entry.
func (r *CachedProductRepository) UpdatePrice(
	ctx context.Context,
	clientID, id int64,
	price decimal.Decimal,
) (product.Product, error) {
	updated, err := r.repo.UpdatePrice(ctx, clientID, id, price)
	if err != nil {
		return product.Product{}, err
	}
	r.invalidate(ctx, clientID, id)

	return updated, nil
}

// ToggleAvailable flips availability and drops the cache entry.
func (r *CachedProductRepository) ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error) {
	updated, err := r.repo.ToggleAvailable(ctx, clientID, id)
	if err != nil {
		return product.Product{}, err
	}
	r.invalidate(ctx, clientID, id)

	return updated, nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, clientID, id int64) {
	if err := r.cache.Delete(ctx, productKey(clientID, id)); err != nil {
		slog.Warn("Failed to invalidate product cache", "product_id", id, "error", err)
	}
}
