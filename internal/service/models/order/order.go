package order

import (
	"encoding/json"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Order represents a guest order placed at a table.
type Order struct {
	ID          int64                 `json:"id"`
	ClientID    int64                 `json:"client_id"`
	TableNumber int                   `json:"table_number"`
	Comment     string                `json:"comment"`
	CreatedBy   int64                 `json:"created_by"`
	TotalPrice  decimal.Decimal       `json:"total_price"`
	Status      Status                `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Items       []orderitem.OrderItem `json:"items"`
}

// MarshalJSON writes the total with two decimal places.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order

	return json.Marshal(struct {
		alias
		TotalPrice string `json:"total_price"`
	}{alias(o), o.TotalPrice.StringFixed(2)})
}
