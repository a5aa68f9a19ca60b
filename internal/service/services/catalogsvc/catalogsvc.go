package catalogsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// CatalogService manages the tenant product catalog.
type CatalogService struct {
	productRepo iproductrepo.IProductRepository
	now         func() time.Time
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.productRepo == nil {
		panic("catalogsvc: product repository is not configured")
	}

	return s
}

// WithProductRepository sets the product repository for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *CatalogService) {
		s.productRepo = repo
	}
}

// List returns tenant products, optionally filtered by category and availability.
func (s *CatalogService) List(
	ctx context.Context,
	clientID int64,
	category string,
	available *bool,
) ([]product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.List")
	defer span.End()

	filter := &product.QueryProductsModel{
		ClientID:  clientID,
		Available: available,
	}
	if category != "" {
		c, err := product.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter.Categories = []product.Category{c}
	}

	return s.productRepo.Query(ctx, filter)
}

// Create adds a product to the tenant catalog. Products are available unless stated otherwise.
func (s *CatalogService) Create(ctx context.Context, model product.CreateProductModel) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.Create")
	defer span.End()

	category, err := product.ParseCategory(model.Category)
	if err != nil {
		return product.Product{}, err
	}
	if model.Price.IsNegative() {
		return product.Product{}, poserr.ErrInvalidPrice
	}

	available := true
	if model.Available != nil {
		available = *model.Available
	}

	now := s.now().UTC()

	return s.productRepo.Insert(ctx, product.Product{
		ClientID:  model.ClientID,
		Name:      model.Name,
		Price:     model.Price.Round(2),
		Category:  category,
		Available: available,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpdatePrice changes the live price. Orders already placed keep their snapshot.
func (s *CatalogService) UpdatePrice(
	ctx context.Context,
	clientID, id int64,
	price decimal.Decimal,
) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.UpdatePrice")
	defer span.End()

	if price.IsNegative() {
		return product.Product{}, poserr.ErrInvalidPrice
	}

	return s.productRepo.UpdatePrice(ctx, clientID, id, price.Round(2))
}

// Get returns a single tenant product.
func (s *CatalogService) Get(ctx context.Context, clientID, id int64) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.Get")
	defer span.End()

	products, err := s.productRepo.Query(ctx, &product.QueryProductsModel{
		ClientID: clientID,
		Ids:      []int64{id},
	})
	if err != nil {
		return product.Product{}, err
	}
	if len(products) == 0 {
		return product.Product{}, poserr.ErrProductNotFound
	}

	return products[0], nil
}

// ToggleAvailable flips whether the product can be offered.
func (s *CatalogService) ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.ToggleAvailable")
	defer span.End()

	return s.productRepo.ToggleAvailable(ctx, clientID, id)
}

// Resolve looks up every id within the tenant. A single miss fails the whole lookup.
func (s *CatalogService) Resolve(
	ctx context.Context,
	clientID int64,
	ids []int64,
) (map[int64]product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.Resolve")
	defer span.End()

	products, err := s.productRepo.Query(ctx, &product.QueryProductsModel{
		ClientID: clientID,
		Ids:      ids,
	})
	if err != nil {
		return nil, err
	}

	result := make(map[int64]product.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}

	for _, id := range ids {
		if _, ok := result[id]; !ok {
			return nil, fmt.Errorf("%w: %d", poserr.ErrProductNotFound, id)
		}
	}

	return result, nil
}
