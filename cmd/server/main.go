package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountingapp "github.com/books/backend/internal/application/accounting"
	inventoryapp "github.com/books/backend/internal/application/inventory"
	"github.com/books/backend/internal/domain/inventory"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/books/backend/internal/infrastructure/config"
	"github.com/books/backend/internal/infrastructure/currency"
	"github.com/books/backend/internal/infrastructure/event"
	"github.com/books/backend/internal/infrastructure/logger"
	"github.com/books/backend/internal/infrastructure/persistence"
	"github.com/books/backend/internal/interfaces/http/handler"
	"github.com/books/backend/internal/interfaces/http/middleware"
	"github.com/books/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting books backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories share one unit of work per service operation
	uow := persistence.NewGormUnitOfWork(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	adjustmentRepo := persistence.NewGormAdjustmentRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	accountResolver := persistence.NewGormAccountResolver(db.DB)

	// Exchange rates come from the database, with a Redis cache in front
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var rateProvider ledger.RateProvider = persistence.NewGormRateProvider(db.DB)
	rateProvider = currency.NewCachedRateProvider(rateProvider, redisClient, cfg.Ledger.RateCacheTTL, log)
	converter := ledger.NewRateTableConverter(rateProvider)

	// Application services
	postingService := accountingapp.NewPostingService(
		transactionRepo, documentRepo, accountResolver, converter,
		valueobject.Currency(cfg.Ledger.BaseCurrency), uow, log)
	documentService := accountingapp.NewDocumentService(documentRepo, adjustmentRepo, postingService, uow, log)
	adjustmentService := accountingapp.NewAdjustmentService(adjustmentRepo, uow, log)

	// Event bus wiring: document lifecycle events drive stock levels
	eventBus := event.NewInMemoryEventBus(log)
	stockService := inventory.NewStockMovementService(stockRepo)
	stockSyncHandler := inventoryapp.NewStockSyncHandler(stockService, log)
	eventBus.Subscribe(stockSyncHandler)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	documentService.SetEventPublisher(eventBus)
	postingService.SetEventPublisher(eventBus)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validator", zap.Error(err))
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewDocumentHandler(documentService)).
		Register(handler.NewAdjustmentHandler(adjustmentService)).
		Register(handler.NewTransactionHandler(postingService))
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

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
