package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tiendago/storefront/internal/application/checkout"
	"github.com/tiendago/storefront/internal/config"
	"github.com/tiendago/storefront/internal/domain/money"
	domorder "github.com/tiendago/storefront/internal/domain/order"
	dompayment "github.com/tiendago/storefront/internal/domain/payment"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
	"github.com/tiendago/storefront/internal/infrastructure/gateway"
	"github.com/tiendago/storefront/internal/infrastructure/id"
	kafkarelay "github.com/tiendago/storefront/internal/infrastructure/kafka"
	"github.com/tiendago/storefront/internal/infrastructure/memory"
	"github.com/tiendago/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/tiendago/storefront/internal/infrastructure/observability/prometrics"
	"github.com/tiendago/storefront/internal/infrastructure/observability/telemetry"
	"github.com/tiendago/storefront/internal/infrastructure/observability/zaplogger"
	"github.com/tiendago/storefront/internal/infrastructure/outbox"
	"github.com/tiendago/storefront/internal/infrastructure/postgres"
	"github.com/tiendago/storefront/internal/infrastructure/redisx"
	"github.com/tiendago/storefront/internal/observability"
	"github.com/tiendago/storefront/internal/pkg/logging"
	httppresentation "github.com/tiendago/storefront/internal/presentation/http"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)
	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry: zap behind the logger port, prometheus behind the metrics
	// port, otel behind the tracer port.
	registry := prometrics.New(cfg.ServiceName, "")
	tel := telemetry.New(
		oteltrace.New(cfg.ServiceName),
		zaplogger.Wrap(baseLogger),
		map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests:  registry.Counter(string(observability.MUsecaseRequests), "Total number of use case invocations.", "use_case", "outcome"),
			observability.MExternalRequests: registry.Counter(string(observability.MExternalRequests), "Total number of calls to external peers.", "peer", "endpoint", "outcome"),
			observability.MHTTPRequests:     registry.Counter(string(observability.MHTTPRequests), "Total number of HTTP requests.", "method", "route", "status"),
		},
		map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration:         registry.Histogram(string(observability.MUsecaseDuration), "Duration of use case execution in seconds.", prometheus.DefBuckets, "use_case"),
			observability.MExternalRequestDuration: registry.Histogram(string(observability.MExternalRequestDuration), "Duration of external calls in seconds.", prometheus.DefBuckets, "peer", "endpoint"),
			observability.MHTTPRequestDuration:     registry.Histogram(string(observability.MHTTPRequestDuration), "Duration of HTTP requests in seconds.", prometheus.DefBuckets, "method", "route"),
		},
	)

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		orderRepo   domorder.Repository
		productRepo domproduct.Repository
	)
	if cfg.PostgresDSN != "" {
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			systemLogger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			systemLogger.Fatal("postgres_migrate_failed", zap.Error(err))
		}
		orderRepo = postgres.NewOrderRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
	} else {
		orderRepo = memory.NewOrderRepository()
		memProducts := memory.NewProductRepository()
		seedProducts(ctx, memProducts, systemLogger)
		productRepo = memProducts
	}

	// Optional order-status cache.
	var statusCache *redisx.StatusCache
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		if err := redisx.Ping(ctx, rdb); err != nil {
			systemLogger.Warn("redis_unreachable", zap.Error(err))
		} else {
			statusCache = redisx.NewStatusCache(rdb)
		}
	}

	// Payment gateway: real HTTP client when configured, simulator otherwise.
	var gw dompayment.Gateway
	if cfg.GatewayBaseURL != "" {
		gw = gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	} else {
		gw = gateway.NewSimulator(cfg.SimApproveRate, cfg.SimDeclinedRate)
		systemLogger.Info("payment_gateway_simulated",
			zap.Float64("approve_rate", cfg.SimApproveRate),
			zap.Float64("decline_rate", cfg.SimDeclinedRate),
		)
	}

	// In-memory event bus; order lifecycle events fan out from here.
	bus := outbox.NewBus(tel.Logger())
	bus.Start(ctx)
	defer bus.Stop(context.Background())

	if len(cfg.KafkaBrokers) > 0 {
		relay := kafkarelay.NewRelay(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, tel.Logger())
		relay.Start(bus)
		defer func() { _ = relay.Close() }()
	}

	idGenerator := id.NewUUIDGenerator()
	createOrder := checkout.NewCreateOrderUseCase(orderRepo, productRepo, idGenerator, bus, tel)
	processPayment := checkout.NewProcessPaymentUseCase(orderRepo, productRepo, gw, cfg.GatewayName, bus, tel)
	queries := checkout.NewQueries(orderRepo, productRepo)

	handler := httppresentation.NewHandler(createOrder, processPayment, queries, statusCache, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}

// seedProducts loads a small demo catalog so the in-memory setup is usable
// out of the box.
func seedProducts(ctx context.Context, repo *memory.ProductRepository, logger *zap.Logger) {
	seeds := []struct {
		id, name string
		cents    int64
		currency string
		stock    int
	}{
		{"prod-001", "Café de origen 500g", 3500000, "COP", 25},
		{"prod-002", "Mochila artesanal", 12000000, "COP", 10},
		{"prod-003", "Sombrero vueltiao", 8500000, "COP", 5},
	}
	for _, s := range seeds {
		p, err := domproduct.New(s.id, s.name, money.MustNew(s.cents, s.currency), s.stock)
		if err != nil {
			logger.Warn("seed_product_invalid", zap.String("product_id", s.id), zap.Error(err))
			continue
		}
		if err := repo.Save(ctx, p); err != nil {
			logger.Warn("seed_product_save_failed", zap.String("product_id", s.id), zap.Error(err))
		}
	}
}
