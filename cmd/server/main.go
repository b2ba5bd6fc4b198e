package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	channelapp "github.com/ecommanager/backend/internal/application/channel"
	shippingapp "github.com/ecommanager/backend/internal/application/shipping"
	syncapp "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/infrastructure/config"
	"github.com/ecommanager/backend/internal/infrastructure/courier"
	"github.com/ecommanager/backend/internal/infrastructure/lease"
	"github.com/ecommanager/backend/internal/infrastructure/logger"
	"github.com/ecommanager/backend/internal/infrastructure/persistence"
	"github.com/ecommanager/backend/internal/infrastructure/storage"
	"github.com/ecommanager/backend/internal/infrastructure/storefront"
	"github.com/ecommanager/backend/internal/interfaces/http/handler"
	"github.com/ecommanager/backend/internal/interfaces/http/middleware"
	"github.com/ecommanager/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Database
	gormLogLevel := gormlogger.Warn
	if cfg.App.Env == "development" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// Redis, backing the per-channel sync leases
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	cancel()
	leases := lease.NewRedisLeaseManager(redisClient)

	// Courier adapters and webhook normalizers
	courierRegistry, err := courier.DefaultRegistry(cfg.Courier.TimeoutSeconds)
	if err != nil {
		log.Fatal("failed to build courier registry", zap.Error(err))
	}

	// Storefront clients
	shopify, err := storefront.NewShopifyClient(&storefront.ShopifyConfig{
		APIVersion:     cfg.Storefront.APIVersion,
		TimeoutSeconds: cfg.Storefront.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("failed to build storefront client", zap.Error(err))
	}
	storefronts := syncapp.NewStorefrontRegistry(shopify)

	// Label archive is optional: without a bucket the shipping service runs
	// with archiving disabled
	var labels shippingapp.LabelStore
	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3LabelStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("failed to build label store", zap.Error(err))
		}
		if err := store.EnsureBucket(context.Background()); err != nil {
			log.Fatal("failed to ensure label bucket", zap.Error(err))
		}
		labels = store
	} else {
		log.Warn("no storage bucket configured, label archiving disabled")
	}

	// Repositories
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	accountRepo := persistence.NewGormCourierAccountRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	syncStore := persistence.NewGormSyncStore(db.DB)

	// Application services
	caps := syncapp.Caps{
		OrderPageSize:      cfg.Sync.OrderPageSize,
		MaxItemsPerRun:     cfg.Sync.MaxItemsPerRun,
		InventoryBatchSize: cfg.Sync.InventoryBatchSize,
		LeaseTTL:           cfg.Sync.LeaseTTL,
	}
	orderSync := syncapp.NewOrderSyncService(syncStore, storefronts, leases, caps, log)
	productSync := syncapp.NewProductSyncService(syncStore, storefronts, leases, caps, log)
	inventorySync := syncapp.NewInventorySyncService(syncStore, storefronts, leases, caps, log)
	orderPush := syncapp.NewOrderPushService(syncStore, storefronts, log)
	channelService := channelapp.NewChannelService(channelRepo, storefronts, log)
	courierService := shippingapp.NewCourierService(accountRepo, shipmentRepo, courierRegistry, labels, log)
	webhookService := shippingapp.NewWebhookService(shipmentRepo, courierRegistry, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig()),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db.DB)).
		Register(handler.NewChannelHandler(channelService)).
		Register(handler.NewSyncHandler(orderSync, productSync, inventorySync, orderPush)).
		Register(handler.NewShippingHandler(courierService)).
		Register(handler.NewWebhookHandler(webhookService)).
		Setup()

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown: in-flight sync runs observe ctx between pages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
