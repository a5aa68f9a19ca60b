package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/itablerepo"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/orderitem/postgres"
	tablerepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/table/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork hands out repositories bound either to the pool or to an open transaction.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	tableRepo     itablerepo.ITableRepository
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) TableRepository() itablerepo.ITableRepository {
	return u.tableRepo
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: client.Pool()}
	u.bind(u.pool)

	return u
}

func (u *UnitOfWork) bind(conn postgres.GenericConn) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.tableRepo = tablerepo.NewPostgresTableRepository(conn)
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	// repositories created after Begin share the transaction
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is safe to defer: it is a no-op after Commit.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
