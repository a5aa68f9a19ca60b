package postgresrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/shopspring/decimal"
)

var orderItemColumns = []string{
	"id",
	"client_id",
	"order_id",
	"product_id",
	"product_name",
	"quantity",
	"price::text",
	"category",
	"created_at",
}

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id          int64     `db:"id"`
	ClientId    int64     `db:"client_id"`
	OrderId     int64     `db:"order_id"`
	ProductId   int64     `db:"product_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
	Price       string    `db:"price"`
	Category    string    `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	category, err := product.ParseCategory(oi.Category)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(oi.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}

	return &orderitem.OrderItem{
		ID:          oi.Id,
		ClientID:    oi.ClientId,
		OrderID:     oi.OrderId,
		ProductID:   oi.ProductId,
		ProductName: oi.ProductName,
		Quantity:    oi.Quantity,
		Price:       price,
		Category:    category,
		CreatedAt:   oi.CreatedAt,
	}, nil
}

// OrderItemDalFromModel converts service layer OrderItem model to OrderItemDal.
func OrderItemDalFromModel(oi *orderitem.OrderItem) *OrderItemDal {
	return &OrderItemDal{
		Id:          oi.ID,
		ClientId:    oi.ClientID,
		OrderId:     oi.OrderID,
		ProductId:   oi.ProductID,
		ProductName: oi.ProductName,
		Quantity:    oi.Quantity,
		Price:       oi.Price.StringFixed(2),
		Category:    oi.Category.String(),
		CreatedAt:   oi.CreatedAt,
	}
}

func (oi *OrderItemDal) scanTargets() []any {
	return []any{
		&oi.Id,
		&oi.ClientId,
		&oi.OrderId,
		&oi.ProductId,
		&oi.ProductName,
		&oi.Quantity,
		&oi.Price,
		&oi.Category,
		&oi.CreatedAt,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order items in one statement and returns them with IDs.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := r.sb.
		Insert("order_items").
		Columns(
			"client_id",
			"order_id",
			"product_id",
			"product_name",
			"quantity",
			"price",
			"category",
			"created_at",
		)

	for i := range orderItems {
		dal := OrderItemDalFromModel(&orderItems[i])
		builder = builder.Values(
			dal.ClientId,
			dal.OrderId,
			dal.ProductId,
			dal.ProductName,
			dal.Quantity,
			sq.Expr("?::numeric", dal.Price),
			dal.Category,
			dal.CreatedAt,
		)
	}

	sql, args, err := builder.
		Suffix("RETURNING " + strings.Join(orderItemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order items insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(orderItemColumns...).
		From("order_items").
		Where(sq.Eq{"client_id": filter.ClientID}).
		OrderBy("id")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.OrderIds})
	}

	if len(filter.ProductIds) > 0 {
		query = query.Where(sq.Eq{"product_id": filter.ProductIds})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanOrderItems(rows rowScanner) ([]orderitem.OrderItem, error) {
	result := []orderitem.OrderItem{}
	for rows.Next() {
		var dal OrderItemDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
