package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id",
	"client_id",
	"table_number",
	"comment",
	"created_by",
	"total_price::text",
	"status",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	Id          int64     `db:"id"`
	ClientId    int64     `db:"client_id"`
	TableNumber int       `db:"table_number"`
	Comment     string    `db:"comment"`
	CreatedBy   int64     `db:"created_by"`
	TotalPrice  string    `db:"total_price"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total price: %w", err)
	}

	return &order.Order{
		ID:          o.Id,
		ClientID:    o.ClientId,
		TableNumber: o.TableNumber,
		Comment:     o.Comment,
		CreatedBy:   o.CreatedBy,
		TotalPrice:  total,
		Status:      status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:          o.ID,
		ClientId:    o.ClientID,
		TableNumber: o.TableNumber,
		Comment:     o.Comment,
		CreatedBy:   o.CreatedBy,
		TotalPrice:  o.TotalPrice.StringFixed(2),
		Status:      o.Status.String(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.ClientId,
		&o.TableNumber,
		&o.Comment,
		&o.CreatedBy,
		&o.TotalPrice,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert inserts an order header and returns it with the generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal := OrderDalFromModel(&o)

	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"client_id",
			"table_number",
			"comment",
			"created_by",
			"total_price",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			dal.ClientId,
			dal.TableNumber,
			dal.Comment,
			dal.CreatedBy,
			sq.Expr("?::numeric", dal.TotalPrice),
			dal.Status,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var inserted OrderDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(inserted.scanTargets()...); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model, err := inserted.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"client_id": filter.ClientID}).
		OrderBy("created_at DESC", "id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.Statuses) > 0 {
		query = query.Where(sq.Eq{"status": statusStrings(filter.Statuses)})
	}

	if len(filter.TableNumbers) > 0 {
		query = query.Where(sq.Eq{"table_number": filter.TableNumbers})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetForUpdate selects the order with a row lock.
func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, clientID, id int64) (order.Order, error) {
	sql, args, err := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id, "client_id": clientID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, poserr.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}

// UpdateStatus sets the order status within the tenant and returns its table number.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	clientID, id int64,
	status order.Status,
	updatedAt time.Time,
) (int, error) {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", status.String()).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id, "client_id": clientID}).
		Suffix("RETURNING table_number").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update query: %w", err)
	}

	var tableNumber int
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&tableNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, poserr.ErrOrderNotFound
		}

		return 0, fmt.Errorf("failed to update order status: %w", err)
	}

	return tableNumber, nil
}

// CountActiveByTable counts orders on the table that still keep it occupied.
func (r *PostgresOrderRepository) CountActiveByTable(
	ctx context.Context,
	clientID int64,
	tableNumber int,
) (int, error) {
	sql, args, err := r.sb.
		Select("count(*)").
		From("orders").
		Where(sq.Eq{
			"client_id":    clientID,
			"table_number": tableNumber,
			"status":       statusStrings(order.ActiveStatuses()),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active orders: %w", err)
	}

	return count, nil
}

func statusStrings(statuses []order.Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = s.String()
	}

	return result
}
