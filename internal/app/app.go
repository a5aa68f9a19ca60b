package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/pos/internal/dal/redis"
	eventsrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/events/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/outbox/postgres"
	cachedproductrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/product/cached"
	productrepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/product/postgres"
	tablerepo "github.com/corray333/backend-labs/pos/internal/dal/repositories/table/postgres"
	"github.com/corray333/backend-labs/pos/internal/otel"
	"github.com/corray333/backend-labs/pos/internal/service/services/catalogsvc"
	"github.com/corray333/backend-labs/pos/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/pos/internal/service/services/tablesvc"
	"github.com/corray333/backend-labs/pos/internal/transport/fanout"
	grpctransport "github.com/corray333/backend-labs/pos/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/pos/internal/transport/http"
	"github.com/corray333/backend-labs/pos/internal/transport/http/auth"
	"github.com/corray333/backend-labs/pos/internal/transport/ws"
	outboxworker "github.com/corray333/backend-labs/pos/internal/worker/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the POS API process.
type App struct {
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	hub            *ws.Hub
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	redisClient    *redis.Client
	rabbitMqClient *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("pos-svc")
	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	exchange := viper.GetString("rabbitmq.exchange")
	if err := rabbitMqClient.DeclareTopicExchange(exchange); err != nil {
		panic(err)
	}

	outboxRepository := outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool())
	publisher := eventsrepo.NewEventPublisher(
		rabbitMqClient,
		outboxRepository,
		exchange,
		viper.GetInt("rabbitmq.outbox.max_retries"),
	)

	hub := ws.NewHub(viper.GetInt("ws.send_buffer"))
	broadcaster := fanout.NewBroadcaster(hub, publisher)

	productRepository := cachedproductrepo.NewCachedProductRepository(
		productrepo.NewPostgresProductRepository(postgresClient.Pool()),
		redis.NewCache(redisClient),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithProductRepository(productRepository),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalog(catalogSvc),
		ordersvc.WithBroadcaster(broadcaster),
		ordersvc.WithStrictTransitions(viper.GetBool("orders.strict_transitions")),
	)

	tableSvc := tablesvc.MustNewTableService(
		tablesvc.WithTableRepository(tablerepo.NewPostgresTableRepository(postgresClient.Pool())),
		tablesvc.WithBroadcaster(broadcaster),
	)

	verifier := auth.MustNewVerifier()
	wsHandler := hub.Handler(verifier, viper.GetStringSlice("server.http.cors.allowed_origins"))

	httpTransport := httptransport.NewHTTPTransport(orderSvc, tableSvc, catalogSvc, verifier, wsHandler)
	httpTransport.RegisterRoutes()

	return &App{
		httpTransport:  httpTransport,
		grpcTransport:  grpctransport.NewGRPCTransport(),
		hub:            hub,
		outboxWorker:   outboxworker.NewWorker(outboxRepository, rabbitMqClient),
		postgresClient: postgresClient,
		redisClient:    redisClient,
		rabbitMqClient: rabbitMqClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		return a.grpcTransport.Run()
	})

	g.Go(func() error {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(gctx)

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")
		a.gracefulShutdown()

		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application stopped with error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

// gracefulShutdown stops the transports first so no new events are produced,
// then closes websocket clients, brokers and databases.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.outboxWorker.Stop()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.hub.Shutdown()
	slog.Info("Websocket clients disconnected")

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	} else {
		slog.Info("Redis connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}
}
