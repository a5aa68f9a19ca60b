package itablerepo

import (
	"context"

	"github.com/corray333/backend-labs/pos/internal/service/models/table"
)

// ITableRepository is an interface for table postgres repository.
type ITableRepository interface {
	Insert(ctx context.Context, t table.Table) (table.Table, error)
	Query(ctx context.Context, filter *table.QueryTablesModel) ([]table.Table, error)
	Get(ctx context.Context, clientID int64, number int) (table.Table, error)
	// LockByNumber takes a row lock on the table for the rest of the transaction.
	// It reports false when the tenant has no such table.
	LockByNumber(ctx context.Context, clientID int64, number int) (bool, error)
	// SetStatus reports false when the tenant has no such table.
	SetStatus(ctx context.Context, clientID int64, number int, status table.Status) (bool, error)
	Delete(ctx context.Context, clientID int64, number int) (bool, error)
}
