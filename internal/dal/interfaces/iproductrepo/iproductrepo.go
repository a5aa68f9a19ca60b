package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
)

// IProductRepository is an interface for product postgres repository.
type IProductRepository interface {
	Insert(ctx context.Context, p product.Product) (product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	UpdatePrice(ctx context.Context, clientID, id int64, price decimal.Decimal) (product.Product, error)
	ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error)
}
