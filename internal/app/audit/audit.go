// Package auditapp runs the consumer that records order status history.
package auditapp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/dal/rabbitmq"
	auditrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/audit/postgres"
	"github.com/corray333/backend-labs/pos/internal/otel"
	"github.com/corray333/backend-labs/pos/internal/service/services/auditsvc"
	"github.com/corray333/backend-labs/pos/internal/transport/consumer"
	"github.com/spf13/viper"
)

// App represents the audit consumer process.
type App struct {
	consumerTransp *consumer.Consumer
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("pos-audit")
	rabbitMqClient := rabbitmq.MustNewClient()
	postgresClient := postgres.MustNewClient()

	if err := rabbitMqClient.DeclareTopicExchange(viper.GetString("rabbitmq.exchange")); err != nil {
		panic(err)
	}

	auditSvc := auditsvc.MustNewAuditService(
		auditsvc.WithAuditRepository(auditrepo.NewAuditRepository(postgresClient.Pool())),
	)

	return &App{
		consumerTransp: consumer.NewConsumer(rabbitMqClient, auditSvc),
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	a.gracefulShutdown()
}

func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
