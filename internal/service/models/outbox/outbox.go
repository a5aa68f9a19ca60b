package outbox

import (
	"time"
)

// OutboxMessage is an event envelope the broker did not accept. It keeps the
// tenant and event name so stuck deliveries can be inspected per tenant.
type OutboxMessage struct {
	ID           int64
	ClientID     int64
	Event        string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// Exhausted reports whether the worker has given up on the message.
func (m OutboxMessage) Exhausted() bool {
	return m.RetryCount >= m.MaxRetries
}
