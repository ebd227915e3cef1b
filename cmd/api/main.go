package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	cartpg "github.com/dwikikusuma/marketplace/internal/cart/infra/postgres"
	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/internal/checkout/infra/adapter"
	checkoutpg "github.com/dwikikusuma/marketplace/internal/checkout/infra/postgres"
	"github.com/dwikikusuma/marketplace/internal/httpapi"
	identitypg "github.com/dwikikusuma/marketplace/internal/identity/postgres"
	orderapp "github.com/dwikikusuma/marketplace/internal/order/app"
	orderpg "github.com/dwikikusuma/marketplace/internal/order/infra/postgres"
	restockapp "github.com/dwikikusuma/marketplace/internal/restock/app"
	restockpg "github.com/dwikikusuma/marketplace/internal/restock/infra/postgres"
	"github.com/dwikikusuma/marketplace/internal/restock/infra/rabbitmq"
	statsapp "github.com/dwikikusuma/marketplace/internal/stats/app"
	statspg "github.com/dwikikusuma/marketplace/internal/stats/infra/postgres"
	stockapp "github.com/dwikikusuma/marketplace/internal/stock/app"
	stockpg "github.com/dwikikusuma/marketplace/internal/stock/infra/postgres"
	"github.com/dwikikusuma/marketplace/pkg/config"
	"github.com/dwikikusuma/marketplace/pkg/logger"
	"github.com/dwikikusuma/marketplace/pkg/metrics"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
	"github.com/dwikikusuma/marketplace/pkg/shutdown"
)

const serviceName = "api"

func main() {
	if err := run(); err != nil {
		slog.Error("service exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(serviceName, cfg.AppEnv, cfg.LogLevel)

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	group := shutdown.NewGroup(time.Duration(cfg.ShutdownTimeoutSecs)*time.Second, log)
	defer group.Close()

	db, err := postgres.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	group.Add("database", func(context.Context) error { return db.Close() })

	var notifier restockapp.Notifier = rabbitmq.NopNotifier{}
	if !cfg.NotifyDisabled {
		mq, err := rabbitmq.NewNotifier(cfg.RabbitMQURL, cfg.NotifyExchangeName, cfg.NotifyRoutingKey, log)
		if err != nil {
			return fmt.Errorf("connect RabbitMQ: %w", err)
		}
		group.Add("rabbitmq", func(context.Context) error { return mq.Close() })
		notifier = mq
	}

	stockRepo := stockpg.NewStockRepo(db)
	stockSvc := stockapp.NewService(stockRepo)
	cartSvc := cartapp.NewService(cartpg.NewCartRepo(db), stockSvc)
	checkoutSvc := checkoutapp.NewService(
		adapter.NewCartServiceReader(cartSvc),
		adapter.NewStockServiceReader(stockSvc),
		checkoutpg.NewCheckoutStore(db),
		checkoutpg.NewShippingLookup(db),
		log,
		cfg.CheckoutMaxAttempts,
		cfg.QuoteMaxConcurrent,
	)
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db))
	restockSvc := restockapp.NewService(restockpg.NewRequestRepo(db), stockRepo, notifier, log)
	statsSvc := statsapp.NewService(statspg.NewStatsRepo(db))

	api := httpapi.NewServer(httpapi.Deps{
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Restock:  restockSvc,
		Stats:    statsSvc,
		Stock:    stockSvc,
		Identity: identitypg.NewLookup(db),
		Metrics:  metrics.NewServerMetrics(serviceName),
		Log:      log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	group.Add("http server", srv.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return nil
	}
}
