package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/outbox"
	"go.opentelemetry.io/otel"
)

const contentTypeJSON = "application/json"

type publisher interface {
	Publish(exchange, routingKey, contentType string, body []byte) error
}

// EventPublisher publishes lifecycle events to a topic exchange.
// Failed publishes are parked in the outbox for the outbox worker.
type EventPublisher struct {
	client     publisher
	outboxRepo ioutboxrepo.IOutboxRepository
	exchange   string
	maxRetries int
	now        func() time.Time
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(
	client publisher,
	outboxRepo ioutboxrepo.IOutboxRepository,
	exchange string,
	maxRetries int,
) *EventPublisher {
	if maxRetries <= 0 {
		maxRetries = 5
	}

	return &EventPublisher{
		client:     client,
		outboxRepo: outboxRepo,
		exchange:   exchange,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// RoutingKey returns "<tenant>.<event>".
func RoutingKey(clientID int64, name event.Name) string {
	return fmt.Sprintf("%d.%s", clientID, name)
}

// Broadcast publishes evt for the tenant.
// The error is non-nil only when neither the broker nor the outbox accepted the event.
func (p *EventPublisher) Broadcast(ctx context.Context, clientID int64, evt event.Event) error {
	ctx, span := otel.Tracer("events").Start(ctx, "EventPublisher.Broadcast")
	defer span.End()

	now := p.now().UTC()

	envelope, err := event.NewEnvelope(clientID, evt, now)
	if err != nil {
		return fmt.Errorf("failed to build event envelope: %w", err)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	routingKey := RoutingKey(clientID, evt.Name)

	pubErr := p.client.Publish(p.exchange, routingKey, contentTypeJSON, body)
	if pubErr == nil {
		return nil
	}

	slog.Warn("Failed to publish event, saving to outbox",
		"event", evt.Name,
		"routing_key", routingKey,
		"error", pubErr,
	)

	err = p.outboxRepo.Insert(ctx, outbox.OutboxMessage{
		ClientID:     clientID,
		Event:        string(evt.Name),
		ExchangeName: p.exchange,
		RoutingKey:   routingKey,
		Payload:      body,
		ContentType:  contentTypeJSON,
		MaxRetries:   p.maxRetries,
		LastError:    pubErr.Error(),
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
	if err != nil {
		return fmt.Errorf("failed to save event to outbox: %w", err)
	}

	return nil
}
