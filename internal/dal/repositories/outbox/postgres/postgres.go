package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/service/models/outbox"
)

var outboxColumns = []string{
	"id",
	"client_id",
	"event",
	"exchange_name",
	"routing_key",
	"payload",
	"content_type",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
	"updated_at",
	"next_retry_at",
}

// OutboxDal is a parked broker event as stored in the outbox table.
type OutboxDal struct {
	Id           int64     `db:"id"`
	ClientId     int64     `db:"client_id"`
	Event        string    `db:"event"`
	ExchangeName string    `db:"exchange_name"`
	RoutingKey   string    `db:"routing_key"`
	Payload      []byte    `db:"payload"`
	ContentType  string    `db:"content_type"`
	RetryCount   int       `db:"retry_count"`
	MaxRetries   int       `db:"max_retries"`
	LastError    string    `db:"last_error"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	NextRetryAt  time.Time `db:"next_retry_at"`
}

// ToModel converts OutboxDal to the service layer message.
func (o *OutboxDal) ToModel() outbox.OutboxMessage {
	return outbox.OutboxMessage{
		ID:           o.Id,
		ClientID:     o.ClientId,
		Event:        o.Event,
		ExchangeName: o.ExchangeName,
		RoutingKey:   o.RoutingKey,
		Payload:      o.Payload,
		ContentType:  o.ContentType,
		RetryCount:   o.RetryCount,
		MaxRetries:   o.MaxRetries,
		LastError:    o.LastError,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		NextRetryAt:  o.NextRetryAt,
	}
}

func (o *OutboxDal) scanTargets() []any {
	return []any{
		&o.Id, &o.ClientId, &o.Event, &o.ExchangeName, &o.RoutingKey, &o.Payload, &o.ContentType,
		&o.RetryCount, &o.MaxRetries, &o.LastError, &o.CreatedAt, &o.UpdatedAt, &o.NextRetryAt,
	}
}

// PostgresOutboxRepository stores events the broker refused.
type PostgresOutboxRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOutboxRepository creates a new Postgres outbox repository.
func NewPostgresOutboxRepository(conn postgres.GenericConn) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert parks msg. Timestamps left zero fall back to the column defaults.
func (r *PostgresOutboxRepository) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	values := sq.Eq{
		"client_id":     msg.ClientID,
		"event":         msg.Event,
		"exchange_name": msg.ExchangeName,
		"routing_key":   msg.RoutingKey,
		"payload":       msg.Payload,
		"content_type":  msg.ContentType,
		"retry_count":   msg.RetryCount,
		"max_retries":   msg.MaxRetries,
		"last_error":    msg.LastError,
	}
	if !msg.CreatedAt.IsZero() {
		values["created_at"] = msg.CreatedAt
		values["updated_at"] = msg.CreatedAt
	}
	if !msg.NextRetryAt.IsZero() {
		values["next_retry_at"] = msg.NextRetryAt
	}

	sql, args, err := r.sb.Insert("outbox").SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert outbox message for client %d: %w", msg.ClientID, err)
	}

	return nil
}

// GetPendingMessages returns due messages that still have retries left, oldest due first.
func (r *PostgresOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error) {
	sql, args, err := r.sb.
		Select(outboxColumns...).
		From("outbox").
		Where("next_retry_at <= now()").
		Where("retry_count < max_retries").
		OrderBy("next_retry_at", "id").
		Limit(uint64(max(limit, 1))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	result := []outbox.OutboxMessage{}
	for rows.Next() {
		var dal OutboxDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Delete drops a delivered message.
func (r *PostgresOutboxRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("outbox").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message %d: %w", id, err)
	}

	return nil
}

// UpdateRetry records a failed attempt and reschedules the message.
func (r *PostgresOutboxRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	sql, args, err := r.sb.
		Update("outbox").
		SetMap(map[string]any{
			"retry_count":   retryCount,
			"last_error":    lastError,
			"next_retry_at": nextRetryAt,
			"updated_at":    sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update outbox message %d: %w", id, err)
	}

	return nil
}
