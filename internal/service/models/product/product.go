package product

import (
	"encoding/json"
	"database/sql/driver"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/shopspring/decimal"
)

// Category tells which station prepares a product.
type Category string

const (
	CategoryKitchen Category = "kitchen"
	CategoryBar     Category = "bar"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) Value() (driver.Value, error) {
	return c.String(), nil
}

// ParseCategory returns poserr.ErrInvalidCategory for unknown values.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryKitchen, CategoryBar:
		return Category(s), nil
	default:
		return "", poserr.ErrInvalidCategory
	}
}

// Product is a catalog entry of a single tenant.
type Product struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  Category        `json:"category"`
	Available bool            `json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON writes the price with two decimal places.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product

	return json.Marshal(struct {
		alias
		Price string `json:"price"`
	}{alias(p), p.Price.StringFixed(2)})
}

// QueryProductsModel represents filter parameters for querying products.
type QueryProductsModel struct {
	ClientID   int64
	Ids        []int64
	Categories []Category
	Available  *bool
}

// CreateProductModel carries the fields of a new catalog entry.
type CreateProductModel struct {
	ClientID  int64
	Name      string
	Price     decimal.Decimal
	Category  string
	Available *bool
}
