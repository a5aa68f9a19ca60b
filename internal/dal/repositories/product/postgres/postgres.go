package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var productColumns = []string{
	"id",
	"client_id",
	"name",
	"price::text",
	"category",
	"available",
	"created_at",
	"updated_at",
}

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id        int64     `db:"id"`
	ClientId  int64     `db:"client_id"`
	Name      string    `db:"name"`
	Price     string    `db:"price"`
	Category  string    `db:"category"`
	Available bool      `db:"available"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	category, err := product.ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}

	return &product.Product{
		ID:        p.Id,
		ClientID:  p.ClientId,
		Name:      p.Name,
		Price:     price,
		Category:  category,
		Available: p.Available,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (p *ProductDal) scanTargets() []any {
	return []any{&p.Id, &p.ClientId, &p.Name, &p.Price, &p.Category, &p.Available, &p.CreatedAt, &p.UpdatedAt}
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a product.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	sql, args, err := r.sb.
		Insert("products").
		Columns("client_id", "name", "price", "category", "available", "created_at", "updated_at").
		Values(
			p.ClientID,
			p.Name,
			sq.Expr("?::numeric", p.Price.StringFixed(2)),
			p.Category.String(),
			p.Available,
			p.CreatedAt,
			p.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	return r.scanOne(ctx, sql, args)
}

// Query retrieves products of a tenant ordered by category and name.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.
		Select(productColumns...).
		From("products").
		Where(sq.Eq{"client_id": filter.ClientID}).
		OrderBy("category", "name")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.Categories) > 0 {
		categories := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			categories[i] = c.String()
		}
		query = query.Where(sq.Eq{"category": categories})
	}

	if filter.Available != nil {
		query = query.Where(sq.Eq{"available": *filter.Available})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := []product.Product{}
	for rows.Next() {
		var dal ProductDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdatePrice changes the live catalog price. Existing order items keep their snapshot.
func (r *PostgresProductRepository) UpdatePrice(
	ctx context.Context,
	clientID, id int64,
	price decimal.Decimal,
) (product.Product, error) {
	sql, args, err := r.sb.
		Update("products").
		Set("price", sq.Expr("?::numeric", price.StringFixed(2))).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "client_id": clientID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.scanOne(ctx, sql, args)
}

// ToggleAvailable flips the availability flag and returns the updated row.
func (r *PostgresProductRepository) ToggleAvailable(ctx context.Context, clientID, id int64) (product.Product, error) {
	sql, args, err := r.sb.
		Update("products").
		Set("available", sq.Expr("NOT available")).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "client_id": clientID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.scanOne(ctx, sql, args)
}

func (r *PostgresProductRepository) scanOne(ctx context.Context, sql string, args []any) (product.Product, error) {
	var dal ProductDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, poserr.ErrProductNotFound
		}

		return product.Product{}, fmt.Errorf("failed to write product: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to convert product dal to model: %w", err)
	}

	return *model, nil
}
