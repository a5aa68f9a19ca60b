package iorderrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	// GetForUpdate locks the order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, clientID, id int64) (order.Order, error)
	// UpdateStatus returns the table number of the updated order.
	UpdateStatus(
		ctx context.Context,
		clientID, id int64,
		status order.Status,
		updatedAt time.Time,
	) (int, error)
	CountActiveByTable(ctx context.Context, clientID int64, tableNumber int) (int, error)
}
