package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/service/models/auditlog"
)

// AuditRepository writes order status history.
type AuditRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(conn postgres.GenericConn) *AuditRepository {
	return &AuditRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveAuditLogs bulk inserts audit entries into order_status_log.
func (r *AuditRepository) SaveAuditLogs(
	ctx context.Context,
	auditLogs []auditlog.AuditLogOrder,
) error {
	if len(auditLogs) == 0 {
		return nil
	}

	builder := r.sb.Insert("order_status_log").
		Columns(
			"client_id",
			"order_id",
			"order_status",
			"event",
			"emitted_at",
			"created_at",
		)

	for _, auditLog := range auditLogs {
		builder = builder.Values(
			auditLog.ClientID,
			auditLog.OrderID,
			auditLog.OrderStatus,
			auditLog.Event,
			auditLog.EmittedAt,
			auditLog.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit logs insert query: %w", err)
	}

	if _, err = r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk insert audit logs: %w", err)
	}

	return nil
}
