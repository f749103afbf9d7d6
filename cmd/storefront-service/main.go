package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cartstore"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("service", "storefront-service"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer sqlDB.Close()

	catalogSvc := catalog.NewService(catalog.NewPostgresRepository(pool), logger)
	orders := order.NewRepository(sqlDB)

	// --- cart snapshots ---
	kv, closeKV, err := openCartKV(ctx, cfg, pool)
	if err != nil {
		logger.Fatal("cart store", zap.String("backend", cfg.CartStore), zap.Error(err))
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Warn("cart store close", zap.Error(err))
		}
	}()
	sessions := cart.NewSessions(cartstore.Factory(kv), logger,
		cart.WithMaxSessions(cfg.CartMaxSessions),
		cart.WithIdleTimeout(cfg.CartIdleTimeout))

	// --- AMQP ---
	var publisher checkout.OrderPublisher
	if cfg.PublishEvents {
		conn, err := events.Dial(ctx, cfg.RabbitMQURL, 10, logger)
		if err != nil {
			logger.Fatal("rabbitmq connect", zap.Error(err))
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, events.NewSequenceRepository(pool), events.PublisherOptions{})
		if err != nil {
			logger.Fatal("create publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
	}

	checkoutSvc := checkout.NewService(sessions, orders, publisher, logger)

	// --- HTTP ---
	h := httpapi.NewHandler(httpapi.Deps{
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		Catalog:        catalogSvc,
		Sessions:       sessions,
		Checkout:       checkoutSvc,
		Orders:         orders,
	})
	if cfg.AdminUID == "" {
		logger.Warn("ADMIN_UID not set, admin API disabled")
	}

	router := httpapi.NewRouter(h, httpapi.RouterOptions{
		AdminUID:         cfg.AdminUID,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("cartStore", cfg.CartStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// openCartKV builds the snapshot backend named by cfg.CartStore. The returned
// func releases it.
func openCartKV(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (cartstore.KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CartStore {
	case config.CartStoreMemory:
		return cartstore.NewMemoryKV(), noop, nil
	case config.CartStoreSQLite:
		kv, err := cartstore.OpenSQLite(ctx, cfg.CartSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.CartStoreRedis:
		kv := cartstore.NewRedisKV(cfg.RedisURL, cfg.CartTTL)
		if err := kv.Ping(ctx, 10); err != nil {
			_ = kv.Close()
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.CartStorePostgres:
		return cartstore.NewPostgresKV(pool), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
	}
}
