package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appchannel "github.com/channelsync/backend/internal/application/channel"
	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/config"
	"github.com/channelsync/backend/internal/infrastructure/logger"
	"github.com/channelsync/backend/internal/infrastructure/persistence"
	"github.com/channelsync/backend/internal/infrastructure/platform"
	"github.com/channelsync/backend/internal/infrastructure/realtime"
	"github.com/channelsync/backend/internal/infrastructure/scheduler"
	"github.com/channelsync/backend/internal/infrastructure/telemetry"
	"github.com/channelsync/backend/internal/interfaces/http/handler"
	"github.com/channelsync/backend/internal/interfaces/http/middleware"
	"github.com/channelsync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting channelsync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database with a GORM logger that routes through zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Production schema changes go through the migrate CLI; auto-migration
	// is a development convenience only.
	if cfg.App.Env != "production" {
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	// Initialize OpenTelemetry metrics
	ctx := context.Background()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down meter provider", zap.Error(err))
		}
	}()

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("channelsync.engine"), log)
	if err != nil {
		log.Fatal("Failed to initialize sync metrics", zap.Error(err))
	}
	httpMetrics, err := telemetry.NewHTTPMetrics(meterProvider.Meter("channelsync.http"))
	if err != nil {
		log.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
	}

	// Initialize action broadcaster
	var broadcaster channel.Broadcaster = realtime.NopBroadcaster{}
	if cfg.Redis.Enabled {
		redisBroadcaster, err := realtime.NewRedisBroadcaster(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBroadcaster.Close(); err != nil {
				log.Error("Failed to close Redis broadcaster", zap.Error(err))
			}
		}()
		broadcaster = redisBroadcaster
		log.Info("Redis action broadcaster enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.String("channel", cfg.Redis.Channel),
		)
	}

	// Initialize platform adapters
	naverAdapter, err := newNaverAdapter(&cfg.Naver, log)
	if err != nil {
		log.Fatal("Failed to initialize marketplace adapter", zap.Error(err))
	}
	shopifyAdapter, err := newShopifyAdapter(&cfg.Shopify, log)
	if err != nil {
		log.Fatal("Failed to initialize storefront adapter", zap.Error(err))
	}

	// Initialize repositories
	mappingRepo := persistence.NewGormSKUMappingRepository(db.DB)
	jobRepo := persistence.NewGormSyncJobRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)
	eventRepo := persistence.NewGormWebhookEventRepository(db.DB)

	// Initialize application services
	rateService := appchannel.NewExchangeRateService(rateRepo, log)
	coordinator := appchannel.NewCoordinator()
	reconcileService := appchannel.NewReconcileService(
		mappingRepo,
		jobRepo,
		naverAdapter,
		shopifyAdapter,
		rateService,
		coordinator,
		broadcaster,
		syncMetrics,
		log,
		appchannel.EngineConfig{
			Workers:                cfg.Sync.Workers,
			PassTimeout:            cfg.Sync.PassTimeout,
			ItemTimeout:            cfg.Sync.ItemTimeout,
			StalenessThreshold:     cfg.Sync.StalenessThreshold,
			QuantityNoiseThreshold: cfg.Sync.QuantityNoiseThreshold,
			PriceNoiseThreshold:    decimal.NewFromFloat(cfg.Sync.PriceNoiseThreshold),
			BaseCurrency:           cfg.Sync.BaseCurrency,
			TargetCurrency:         cfg.Sync.TargetCurrency,
		},
	)
	webhookService := appchannel.NewWebhookService(eventRepo, mappingRepo, reconcileService, log)
	mappingService := appchannel.NewMappingService(mappingRepo)

	// Initialize periodic scheduler
	syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
		Enabled:          cfg.Sync.SchedulerEnabled,
		Interval:         cfg.Sync.Interval,
		WebhookRetention: cfg.Sync.WebhookRetention,
		PurgeInterval:    24 * time.Hour,
	}, reconcileService, webhookService, log)
	if err != nil {
		log.Fatal("Failed to initialize sync scheduler", zap.Error(err))
	}
	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}

	// Initialize HTTP handlers
	syncHandler := handler.NewSyncHandler(reconcileService, jobRepo)
	mappingHandler := handler.NewMappingHandler(mappingService)
	rateHandler := handler.NewRateHandler(rateService)
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Webhook, log)

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Middleware order matters:
	// 1. RequestID - generate request ID first so all logs include it
	// 2. Recovery - catch panics from everything below
	// 3. GinMiddleware - request logging
	// 4. Secure - security headers on every response
	// 5. CORS - handle preflight before hitting handlers
	// 6. BodyLimit - reject oversized payloads early
	// 7. RateLimit - throttle before doing real work
	// 8. HTTPMetrics - observe what actually reached the handlers
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.HTTPMetrics(httpMetrics))

	// Health check endpoint (outside the versioned API group)
	engine.GET("/health", healthHandler(db, log))

	// Register versioned API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(syncHandler).
		Register(mappingHandler).
		Register(rateHandler).
		Register(webhookHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := syncScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Sync scheduler shutdown failed", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

// newNaverAdapter builds the marketplace adapter from application config.
func newNaverAdapter(cfg *config.NaverConfig, log *zap.Logger) (*platform.NaverAdapter, error) {
	platformCfg := platform.NewNaverConfig(cfg.ClientID, cfg.ClientSecret)
	if cfg.BaseURL != "" {
		platformCfg.BaseURL = cfg.BaseURL
	}
	platformCfg.Timeout = cfg.Timeout
	platformCfg.RatePerSecond = cfg.RatePerSecond
	platformCfg.RateBurst = cfg.RateBurst
	platformCfg.RateMaxWait = cfg.RateMaxWait
	return platform.NewNaverAdapter(platformCfg, log)
}

// newShopifyAdapter builds the storefront adapter from application config.
func newShopifyAdapter(cfg *config.ShopifyConfig, log *zap.Logger) (*platform.ShopifyAdapter, error) {
	var locationID int64
	if cfg.LocationID != "" {
		parsed, err := strconv.ParseInt(cfg.LocationID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shopify.location_id %q: %w", cfg.LocationID, err)
		}
		locationID = parsed
	}
	platformCfg := platform.NewShopifyConfig(cfg.ShopDomain, cfg.AccessToken, locationID)
	platformCfg.APIVersion = cfg.APIVersion
	platformCfg.Timeout = cfg.Timeout
	platformCfg.RatePerSecond = cfg.RatePerSecond
	platformCfg.RateBurst = cfg.RateBurst
	platformCfg.RateMaxWait = cfg.RateMaxWait
	return platform.NewShopifyAdapter(platformCfg, log)
}

// healthHandler reports process and database health.
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		overall := "ok"
		dbStatus := "up"
		status := http.StatusOK
		if err := db.Ping(); err != nil {
			reqLog.Error("Health check database ping failed", zap.Error(err))
			overall = "degraded"
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
