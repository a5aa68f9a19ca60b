package auditlog

import "time"

// AuditLogOrder represents an audit log entry for an order status change.
type AuditLogOrder struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	OrderID     int64     `json:"order_id"`
	OrderStatus string    `json:"order_status"`
	Event       string    `json:"event"`
	EmittedAt   time.Time `json:"emitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}
