package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/kafka"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/shop/internal/dal/redis"
	outboxrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/shop/internal/identity"
	"github.com/corray333/backend-labs/shop/internal/metrics"
	"github.com/corray333/backend-labs/shop/internal/otel"
	"github.com/corray333/backend-labs/shop/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/cartsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/paymentsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/productsvc"
	"github.com/corray333/backend-labs/shop/internal/service/services/reviewsvc"
	httptransport "github.com/corray333/backend-labs/shop/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/shop/internal/worker/outbox"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// publisher is the broker the outbox worker delivers to.
type publisher interface {
	outboxworker.Publisher
	Close() error
}

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	publisher      publisher
	postgresClient *postgres.Client
	redisClient    *goredis.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()
	broker := mustNewPublisher(viper.GetString("broker.kind"))

	registry := metrics.NewRegistry()

	catalog := productsvc.NewCachedProductService(
		productsvc.MustNewProductService(productsvc.WithPostgresClient(postgresClient)),
		redisClient,
		viper.GetDuration("redis.catalog_ttl"),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalogInvalidator(catalog),
		ordersvc.WithMetrics(metrics.NewOrderMetrics(registry)),
	)

	authSvc := authsvc.MustNewAuthService(
		authsvc.WithPostgresClient(postgresClient),
		authsvc.WithIdentityProvider(identity.MustNewProvider(identity.ConfigFromViper())),
	)

	transport := httptransport.NewHTTPTransport(httptransport.Services{
		Auth:     authSvc,
		Orders:   orderSvc,
		Catalog:  catalog,
		Payments: paymentsvc.MustNewPaymentService(paymentsvc.WithPostgresClient(postgresClient)),
		Reviews:  reviewsvc.MustNewReviewService(reviewsvc.WithPostgresClient(postgresClient)),
		Cart:     cartsvc.MustNewCartService(cartsvc.WithPostgresClient(postgresClient)),
	}, registry)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()),
		broker,
	)

	return &App{
		transport:      transport,
		outboxWorker:   outboxWorker,
		publisher:      broker,
		postgresClient: postgresClient,
		redisClient:    redisClient,
		otelController: otelController,
	}
}

func mustNewPublisher(kind string) publisher {
	switch kind {
	case "", "rabbitmq":
		return rabbitmq.MustNewClient()
	case "kafka":
		return kafka.MustNewProducer()
	default:
		panic(fmt.Sprintf("unknown broker.kind %q", kind))
	}
}

// Run starts the HTTP server and the outbox worker and blocks until an
// interrupt signal or the failure of either.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
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

	a.closeResources()
	slog.Info("Application shutdown complete")
}

// gracefulShutdown stops the producers of work: the worker and the HTTP server.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}
}

// closeResources releases connections once nothing uses them.
func (a *App) closeResources() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.publisher.Close(); err != nil {
		slog.Error("Broker connection close error", "error", err)
	} else {
		slog.Info("Broker connection closed gracefully")
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}
}
