package postgresrepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresOrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresOrderRepository(mock), mock
}

func TestCountActiveByTable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM orders WHERE client_id = $1 AND status IN ($2,$3,$4) AND table_number = $5",
	)).
		WithArgs(int64(1), "pending", "preparing", "ready", 5).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActiveByTable(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_ReturnsTableNumber(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE orders SET status = $1, updated_at = $2 WHERE client_id = $3 AND id = $4 RETURNING table_number",
	)).
		WithArgs("served", at, int64(1), int64(30)).
		WillReturnRows(pgxmock.NewRows([]string{"table_number"}).AddRow(5))

	tableNumber, err := repo.UpdateStatus(context.Background(), 1, 30, order.StatusServed, at)
	require.NoError(t, err)
	assert.Equal(t, 5, tableNumber)
}

func TestUpdateStatus_OtherTenant(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE orders").
		WithArgs("ready", pgxmock.AnyArg(), int64(2), int64(30)).
		WillReturnRows(pgxmock.NewRows([]string{"table_number"}))

	_, err := repo.UpdateStatus(context.Background(), 2, 30, order.StatusReady, time.Now())
	assert.ErrorIs(t, err, poserr.ErrOrderNotFound)
}

func TestQuery_TableAndPage(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM orders WHERE client_id = $1 AND table_number IN ($2) ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40",
	)).
		WithArgs(int64(1), 7).
		WillReturnRows(pgxmock.NewRows(orderColumns).
			AddRow(int64(3), int64(1), 7, "", int64(9), "12.50", "pending", at, at))

	got, err := repo.Query(context.Background(), &order.QueryOrdersModel{
		ClientID:     1,
		TableNumbers: []int{7},
		Limit:        20,
		Offset:       40,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "12.50", got[0].TotalPrice.StringFixed(2))
	assert.Equal(t, order.StatusPending, got[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
