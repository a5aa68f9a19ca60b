package orderitem

import (
	"encoding/json"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
)

// OrderItem is a product line of an order with name, price and category
// snapshotted from the catalog when the order was placed.
type OrderItem struct {
	ID          int64            `json:"id"`
	ClientID    int64            `json:"client_id"`
	OrderID     int64            `json:"order_id"`
	ProductID   int64            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	Price       decimal.Decimal  `json:"price"`
	Category    product.Category `json:"category"`
	CreatedAt   time.Time        `json:"created_at"`
}

// MarshalJSON writes the snapshot price with two decimal places.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type alias OrderItem

	return json.Marshal(struct {
		alias
		Price string `json:"price"`
	}{alias(i), i.Price.StringFixed(2)})
}

// Subtotal returns price * quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsMixed reports whether items contain both kitchen and bar products.
func IsMixed(items []OrderItem) bool {
	var kitchen, bar bool
	for _, item := range items {
		switch item.Category {
		case product.CategoryKitchen:
			kitchen = true
		case product.CategoryBar:
			bar = true
		}
	}

	return kitchen && bar
}

// FilterByCategory returns the items of the given category.
func FilterByCategory(items []OrderItem, category product.Category) []OrderItem {
	result := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			result = append(result, item)
		}
	}

	return result
}
