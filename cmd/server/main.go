package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "storefront-service/docs"
	"storefront-service/internal/config"
	"storefront-service/internal/controllers/http"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/infra/database"
	"storefront-service/internal/infra/events"
	"storefront-service/internal/infra/notify"
	"storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/logger"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/dynamo"
	"storefront-service/internal/repository/gormdb"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title        Storefront Service API
// @version      1.0
// @description  Catalog browsing, stock lookup and order placement for the storefront.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in   header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.New(logger.Options{Service: "storefront-service", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogRepo, orderRepo, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store: connect", slog.String("driver", cfg.StoreDriver), slog.Any("err", err))
		os.Exit(1)
	}

	orderSvc := services.NewOrderService(catalogRepo, orderRepo, services.OrderServiceConfig{
		StoreTimeout: cfg.StoreTimeout,
		StrictTotal:  cfg.StrictTotal,
	})
	stockSvc := services.NewStockService(catalogRepo, cfg.StoreTimeout)
	catalogSvc := services.NewCatalogService(catalogRepo, cfg.StoreTimeout)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           0,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()

		stockCache := cache.NewStockCache(redisClient, cfg.StockCacheTTL)
		if err := stockCache.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, stock cache disabled", slog.Any("err", err))
		} else {
			orderSvc.SetStockCache(stockCache)
			stockSvc.SetStockCache(stockCache)
		}
	}

	dispatcher := events.NewDispatcher(cfg.NotifyTimeout)
	if cfg.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			slog.Warn("rabbitmq unavailable, order events disabled", slog.Any("err", err))
		} else {
			defer publisher.Close()
			dispatcher.Register("rabbitmq", publisher)
		}
	}
	if cfg.NotifyWebhookURL != "" {
		dispatcher.Register("webhook", notify.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.CurrencySymbol, cfg.NotifyTimeout))
	}
	if dispatcher.Len() > 0 {
		orderSvc.SetEventDispatcher(dispatcher)
	}

	handler := http.NewHandler(orderSvc, stockSvc, catalogSvc, http.AuthSecrets{
		Admin:    cfg.AdminJWTSecret,
		Customer: cfg.CustomerJWTSecret,
	})

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), http.RequestLogger())
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("starting storefront service", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("server run", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", slog.Any("err", err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Warn("pending notifications dropped", slog.Any("err", err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.CatalogRepository, repository.OrderRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL, config.DriverPostgres:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return gormdb.NewCatalogRepository(db), gormdb.NewOrderRepository(db), nil
	case config.DriverDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, err
		}
		return dynamo.NewCatalogRepository(ddb, cfg.DynamoDB.ProductsTable),
			dynamo.NewOrderRepository(ddb, cfg.DynamoDB.ProductsTable, cfg.DynamoDB.OrdersTable), nil
	}
	slog.Warn("using in-memory store, data is lost on restart")
	store := memory.NewStore()
	return store, store, nil
}
