package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/services/auditsvc"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// service represents the service layer interface.
type service interface {
	ProcessEvent(ctx context.Context, env event.Envelope) error
}

type broker interface {
	DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error)
	BindQueue(queue, pattern, exchange string) error
	Consume(cfg rabbitmq.ConsumeConfig) (<-chan amqp.Delivery, error)
}

// bindings are the routing key patterns the audit queue listens to.
var bindings = []string{
	"*." + string(event.OrderCreated),
	"*." + string(event.OrderUpdated),
}

// Consumer drains order events from RabbitMQ into the audit service.
type Consumer struct {
	client  broker
	service service
	queue   amqp.Queue
	limit   int
	stop    chan struct{}
	done    chan struct{}
}

// NewConsumer declares the durable audit queue and binds it to the events exchange.
func NewConsumer(client broker, service service) *Consumer {
	queueName := viper.GetString("rabbitmq.audit.queue")
	if queueName == "" {
		panic("rabbitmq.audit.queue is not set in config")
	}
	exchange := viper.GetString("rabbitmq.exchange")

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    queueName,
		Durable: true,
	})
	if err != nil {
		panic(err)
	}

	for _, pattern := range bindings {
		if err := client.BindQueue(queue.Name, pattern, exchange); err != nil {
			panic(fmt.Sprintf("failed to bind %s to %s: %v", queue.Name, pattern, err))
		}
	}

	limit := viper.GetInt("rabbitmq.audit.concurrency")
	if limit <= 0 {
		limit = 50
	}

	return &Consumer{
		client:  client,
		service: service,
		queue:   queue,
		limit:   limit,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming messages and blocks until Shutdown, ctx cancellation or
// the delivery channel closing.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.audit.consumer_tag")
	if consumerTag == "" {
		consumerTag = "pos-audit"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue.Name,
		Consumer: consumerTag,
	})
	if err != nil {
		close(c.done)

		return fmt.Errorf("failed to start consuming %s: %w", c.queue.Name, err)
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	return c.consume(ctx, msgs)
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	defer close(c.done)

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(c.limit)

loop:
	for {
		select {
		case <-c.stop:
			slog.Info("Stopping consumer")

			break loop
		case <-ctx.Done():
			break loop
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("Message channel closed")

				break loop
			}

			g.Go(func() error {
				c.processMessage(gctx, msg)

				return nil
			})
		}
	}

	return g.Wait()
}

// processMessage settles every delivery exactly once. Malformed payloads are
// dropped, storage failures are requeued.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	var env event.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		slog.Error("Failed to unmarshal event", "error", err, "delivery_tag", msg.DeliveryTag)
		nack(msg, false)

		return
	}
	span.SetAttributes(
		attribute.String("event", string(env.Event)),
		attribute.Int64("client_id", env.ClientID),
	)

	err := c.service.ProcessEvent(ctx, env)
	switch {
	case errors.Is(err, auditsvc.ErrMalformedEvent):
		slog.Error("Dropping malformed event", "error", err, "event", env.Event)
		nack(msg, false)

		return
	case err != nil:
		slog.Error("Failed to process event", "error", err, "event", env.Event)
		nack(msg, true)

		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return
	}

	slog.Debug("Message processed", "event", env.Event, "client_id", env.ClientID)
}

func nack(msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		slog.Error("Failed to nack message", "error", err)
	}
}

// Shutdown stops reading new deliveries and waits for in-flight ones.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
