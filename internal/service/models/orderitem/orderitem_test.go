package orderitem

import (
	"testing"

	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsMixed(t *testing.T) {
	pizza := OrderItem{Category: product.CategoryKitchen}
	cola := OrderItem{Category: product.CategoryBar}

	assert.True(t, IsMixed([]OrderItem{pizza, cola}))
	assert.False(t, IsMixed([]OrderItem{pizza, pizza}))
	assert.False(t, IsMixed([]OrderItem{cola}))
	assert.False(t, IsMixed(nil))
}

func TestFilterByCategory(t *testing.T) {
	items := []OrderItem{
		{ID: 1, Category: product.CategoryKitchen},
		{ID: 2, Category: product.CategoryBar},
		{ID: 3, Category: product.CategoryKitchen},
	}

	kitchen := FilterByCategory(items, product.CategoryKitchen)
	assert.Len(t, kitchen, 2)
	assert.Equal(t, int64(3), kitchen[1].ID)
	assert.Empty(t, FilterByCategory(items[:1], product.CategoryBar))
}

func TestSubtotal(t *testing.T) {
	item := OrderItem{Price: decimal.RequireFromString("12.50"), Quantity: 3}

	assert.True(t, decimal.RequireFromString("37.5").Equal(item.Subtotal()))
}
