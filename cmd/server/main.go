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

	appcatalog "github.com/minimart/backend/internal/application/catalog"
	appinventory "github.com/minimart/backend/internal/application/inventory"
	apporder "github.com/minimart/backend/internal/application/order"
	apppayment "github.com/minimart/backend/internal/application/payment"
	"github.com/minimart/backend/internal/infrastructure/auth"
	"github.com/minimart/backend/internal/infrastructure/config"
	"github.com/minimart/backend/internal/infrastructure/logger"
	"github.com/minimart/backend/internal/infrastructure/ocr"
	"github.com/minimart/backend/internal/infrastructure/persistence"
	"github.com/minimart/backend/internal/infrastructure/storage"
	"github.com/minimart/backend/internal/interfaces/http/handler"
	"github.com/minimart/backend/internal/interfaces/http/middleware"
	"github.com/minimart/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Minimart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Screenshot storage driver
	var screenshotStorage apppayment.ScreenshotStorage
	switch cfg.Storage.Driver {
	case "s3":
		screenshotStorage, err = storage.NewS3ScreenshotStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		log.Info("Screenshot storage: s3", zap.String("bucket", cfg.Storage.Bucket))
	default:
		screenshotStorage, err = storage.NewLocalScreenshotStorage(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		log.Info("Screenshot storage: local", zap.String("dir", cfg.Storage.LocalDir))
	}

	// OCR driver
	var extractor apppayment.TextExtractor
	allowStubUploads := false
	switch cfg.OCR.Driver {
	case "vision":
		extractor = ocr.NewGoogleVisionExtractor(cfg.OCR.APIKey, cfg.OCR.Timeout)
		log.Info("OCR driver: google vision")
	default:
		extractor = ocr.NewStubExtractor()
		allowStubUploads = true
		log.Warn("OCR driver: stub (development only)")
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	stockService := appinventory.NewStockService(stockRepo)
	catalogService := appcatalog.NewCatalogService(productRepo, categoryRepo, stockService)
	orderService := apporder.NewOrderService(orderRepo, paymentRepo, productRepo, stockRepo, txScope)
	verificationService := apppayment.NewVerificationService(
		orderRepo, paymentRepo, txScope, extractor, screenshotStorage, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewRedisTokenBlacklist(redisClient)

	// HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(verificationService, allowStubUploads)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	inventoryHandler := handler.NewInventoryHandler(stockService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	})

	r := router.NewRouter(engine, router.Config{
		OrderHandler:     orderHandler,
		PaymentHandler:   paymentHandler,
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		SystemHandler:    systemHandler,
		AuthMiddleware:   authMiddleware,
		AdminMiddleware:  middleware.RequireAdmin(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
