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
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"github.com/jackc/pgx/v5"
)

var tableColumns = []string{
	"id",
	"client_id",
	"number",
	"capacity",
	"status",
	"created_at",
	"updated_at",
}

// TableDal represents table data access layer model.
type TableDal struct {
	Id        int64     `db:"id"`
	ClientId  int64     `db:"client_id"`
	Number    int       `db:"number"`
	Capacity  int       `db:"capacity"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts TableDal to service layer Table model.
func (t *TableDal) ToModel() (*table.Table, error) {
	status, err := table.ParseStatus(t.Status)
	if err != nil {
		return nil, err
	}

	return &table.Table{
		ID:        t.Id,
		ClientID:  t.ClientId,
		Number:    t.Number,
		Capacity:  t.Capacity,
		Status:    status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func (t *TableDal) scanTargets() []any {
	return []any{&t.Id, &t.ClientId, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt}
}

// PostgresTableRepository represents a Postgres table repository.
type PostgresTableRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresTableRepository creates a new Postgres table repository.
func NewPostgresTableRepository(conn postgres.GenericConn) *PostgresTableRepository {
	return &PostgresTableRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a table. A duplicate number within the tenant yields poserr.ErrTableExists.
func (r *PostgresTableRepository) Insert(ctx context.Context, t table.Table) (table.Table, error) {
	sql, args, err := r.sb.
		Insert("tables").
		Columns("client_id", "number", "capacity", "status", "created_at", "updated_at").
		Values(t.ClientID, t.Number, t.Capacity, t.Status.String(), t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING " + strings.Join(tableColumns, ", ")).
		ToSql()
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var dal TableDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(dal.scanTargets()...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return table.Table{}, poserr.ErrTableExists
		}

		return table.Table{}, fmt.Errorf("failed to insert table: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to convert table dal to model: %w", err)
	}

	return *model, nil
}

// Query retrieves tables of a tenant ordered by number.
func (r *PostgresTableRepository) Query(ctx context.Context, filter *table.QueryTablesModel) ([]table.Table, error) {
	query := r.sb.
		Select(tableColumns...).
		From("tables").
		Where(sq.Eq{"client_id": filter.ClientID}).
		OrderBy("number")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		query = query.Where(sq.Eq{"status": statuses})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	result := []table.Table{}
	for rows.Next() {
		var dal TableDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert table dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Get returns the tenant's table by number.
func (r *PostgresTableRepository) Get(ctx context.Context, clientID int64, number int) (table.Table, error) {
	sql, args, err := r.sb.
		Select(tableColumns...).
		From("tables").
		Where(sq.Eq{"client_id": clientID, "number": number}).
		ToSql()
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to build query: %w", err)
	}

	var dal TableDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return table.Table{}, poserr.ErrTableNotFound
		}

		return table.Table{}, fmt.Errorf("failed to get table: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to convert table dal to model: %w", err)
	}

	return *model, nil
}

// LockByNumber selects the table row FOR UPDATE so concurrent occupancy changes serialize on it.
func (r *PostgresTableRepository) LockByNumber(ctx context.Context, clientID int64, number int) (bool, error) {
	sql, args, err := r.sb.
		Select("id").
		From("tables").
		Where(sq.Eq{"client_id": clientID, "number": number}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build lock query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to lock table: %w", err)
	}

	return true, nil
}

// SetStatus updates the table status within the tenant.
func (r *PostgresTableRepository) SetStatus(
	ctx context.Context,
	clientID int64,
	number int,
	status table.Status,
) (bool, error) {
	sql, args, err := r.sb.
		Update("tables").
		Set("status", status.String()).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"client_id": clientID, "number": number}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update table status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the tenant's table.
func (r *PostgresTableRepository) Delete(ctx context.Context, clientID int64, number int) (bool, error) {
	sql, args, err := r.sb.
		Delete("tables").
		Where(sq.Eq{"client_id": clientID, "number": number}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete table: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
