package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/example/order-saga/internal/api"
	"github.com/example/order-saga/internal/app"
	"github.com/example/order-saga/internal/config"
	"github.com/example/order-saga/internal/eventbus"
	"github.com/example/order-saga/internal/inventory"
	"github.com/example/order-saga/internal/notification"
	"github.com/example/order-saga/internal/orders"
	"github.com/example/order-saga/internal/shipping"
	"github.com/example/order-saga/internal/telemetry"
)

const (
	serviceName    = "order-saga"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	repos := app.MemoryRepositories()
	if cfg.PostgresURL != "" {
		db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := db.Ping(); err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		repos = app.Repositories{
			Orders:        orders.NewPostgresRepository(db),
			Inventory:     inventory.NewPostgresRepository(db),
			Shipments:     shipping.NewPostgresRepository(db),
			Notifications: notification.NewPostgresRepository(db),
		}
		logger.Info("using postgres repositories")
	}

	var bus eventbus.Bus
	if len(cfg.KafkaBrokers) > 0 {
		kafkaBus := eventbus.NewKafkaBus(cfg.KafkaBrokers, cfg.ConsumerGroup, logger)
		defer func() { _ = kafkaBus.Close() }()
		bus = kafkaBus
		logger.Info("using kafka event bus", "brokers", cfg.KafkaBrokers)
	} else {
		bus = eventbus.NewInProcessBus(logger)
	}

	application := app.New(bus, repos, app.Delays{
		Inventory:    cfg.InventoryIODelay,
		Shipping:     cfg.ShippingIODelay,
		Notification: cfg.NotificationIODelay,
	}, logger)

	handler := api.NewHandler(application, cfg.StuckSagaAge, logger)
	mux := handler.Routes()
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout: 10 * time.Second,
		// Benchmark and load-test requests block until the barrier join.
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		logger.Info("starting order saga service", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
