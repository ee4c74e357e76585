package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountapp "github.com/Lion1208/fastpay/internal/application/account"
	identityapp "github.com/Lion1208/fastpay/internal/application/identity"
	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	platformapp "github.com/Lion1208/fastpay/internal/application/platform"
	supportapp "github.com/Lion1208/fastpay/internal/application/support"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/infrastructure/auth"
	"github.com/Lion1208/fastpay/internal/infrastructure/cache"
	"github.com/Lion1208/fastpay/internal/infrastructure/config"
	"github.com/Lion1208/fastpay/internal/infrastructure/logger"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence"
	"github.com/Lion1208/fastpay/internal/infrastructure/pix"
	"github.com/Lion1208/fastpay/internal/infrastructure/receipt"
	"github.com/Lion1208/fastpay/internal/infrastructure/scheduler"
	"github.com/Lion1208/fastpay/internal/infrastructure/storage"
	"github.com/Lion1208/fastpay/internal/infrastructure/telemetry"
	"github.com/Lion1208/fastpay/internal/interfaces/http/handler"
	"github.com/Lion1208/fastpay/internal/interfaces/http/middleware"
	"github.com/Lion1208/fastpay/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/Lion1208/fastpay/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			FastPay API
//	@version		1.0
//	@description	PIX payment gateway API - partner accounts, deposits, referral commissions, withdrawals and transfers

//	@contact.name	API Support
//	@contact.url	https://github.com/Lion1208/fastpay
//	@contact.email	support@fastpay.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				API key authentication for /ext/v1 endpoints

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FastPay",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Background context for telemetry providers and workers. Cancelled
	// during shutdown so periodic collectors stop before exporters do.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Initialize OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(appCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry metrics
	meterProvider, err := telemetry.NewMeterProvider(appCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
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
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry logs and bridge zap into the OTEL pipeline
	loggerProvider, err := telemetry.NewLoggerProvider(appCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore)
		log.Info("Zap logs bridged to OpenTelemetry")
	}

	// Continuous profiling (Pyroscope)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilingEnabled,
		ServerAddress:       cfg.Telemetry.ProfilingServer,
		ApplicationName:     cfg.App.Name,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database metrics (query durations, pool stats)
	meter := meterProvider.Meter("fastpay")
	if meterProvider.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to create database metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	withdrawalRepo := persistence.NewGormWithdrawalRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)
	apiKeyRepo := persistence.NewGormAPIKeyRepository(db.DB)

	// Platform settings are read on every deposit and withdrawal, so
	// they sit behind a Redis cache when Redis is reachable.
	var settingsRepo platform.SettingsRepository = persistence.NewGormSettingsRepository(db.DB)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(appCtx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, platform settings served uncached", zap.Error(err))
		_ = redisClient.Close()
	} else {
		settingsRepo = cache.NewCachedSettingsRepository(settingsRepo, redisClient, time.Minute, log)
		defer func() {
			_ = redisClient.Close()
		}()
	}
	pingCancel()

	// Webhook delivery deduplication store (Redis with in-memory fallback)
	dedupeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	dedupeStore, err := dedupeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// FastDePix processor client and webhook signature verifier
	processor, err := pix.NewFastDePixAdapter(cfg.Processor)
	if err != nil {
		log.Fatal("Failed to create FastDePix adapter", zap.Error(err))
	}
	verifier, err := pix.NewHMACVerifier(cfg.Processor.WebhookSecret)
	if err != nil {
		log.Fatal("Failed to create webhook verifier", zap.Error(err))
	}

	// Auth infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	passwordHasher := auth.NewPasswordHasher()

	// Initialize application services
	depositService := ledgerapp.NewDepositService(txRepo, accountRepo, processor, log)
	settlementService := ledgerapp.NewSettlementService(txRepo, accountRepo, settingsRepo, processor, verifier, dedupeStore, log)
	withdrawalService := ledgerapp.NewWithdrawalService(withdrawalRepo, accountRepo, settingsRepo, log)
	transferService := ledgerapp.NewTransferService(transferRepo, accountRepo, settingsRepo, log)
	commissionService := ledgerapp.NewCommissionService(commissionRepo, log)
	accountService := accountapp.NewService(accountRepo, txRepo, commissionRepo, withdrawalRepo, settingsRepo, log)
	authService := identityapp.NewAuthService(accountRepo, settingsRepo, jwtService, passwordHasher, log)
	settingsService := platformapp.NewSettingsService(settingsRepo, log)
	ticketService := supportapp.NewTicketService(ticketRepo, log)
	apiKeyService := supportapp.NewAPIKeyService(apiKeyRepo, accountRepo, log)

	// Receipt rendering is optional; the deposit handler returns 404
	// for receipt requests when the service is nil.
	var receiptService *ledgerapp.ReceiptService
	if cfg.Receipt.Enabled {
		renderer, err := receipt.NewChromedpRenderer(&receipt.ChromedpConfig{
			DefaultTimeout: cfg.Receipt.RenderTimeout,
			RemoteURL:      cfg.Receipt.ChromeURL,
			NoSandbox:      cfg.Receipt.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to create receipt renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing receipt renderer", zap.Error(err))
			}
		}()

		var objectStorage ledgerapp.ObjectStorageService
		if cfg.Storage.Endpoint != "" {
			s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
			if err != nil {
				log.Fatal("Failed to create object storage", zap.Error(err))
			}
			if err := s3Storage.EnsureBucket(appCtx); err != nil {
				log.Fatal("Failed to ensure receipt bucket", zap.Error(err))
			}
			objectStorage = s3Storage
		} else {
			log.Warn("No object storage endpoint configured, receipt URLs will be stubs")
			objectStorage = storage.NewStubObjectStorage()
		}

		receiptService = ledgerapp.NewReceiptService(txRepo, accountRepo, renderer, objectStorage, log)
		log.Info("Receipt rendering enabled")
	}

	// Business metrics (deposit volumes, balance totals)
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meter,
			Logger:         log,
			LedgerProvider: telemetry.NewGormLedgerMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to create business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(appCtx, 5*time.Minute)
		}
	}

	// Payment status poller covers webhook deliveries that never arrived
	paymentPoller := scheduler.NewPaymentPoller(settlementService, log, scheduler.PaymentPollerConfig{
		Enabled:   cfg.Poller.Enabled,
		Interval:  cfg.Poller.Interval,
		BatchSize: cfg.Poller.BatchSize,
	})
	if cfg.Poller.Enabled {
		if err := paymentPoller.Start(appCtx); err != nil {
			log.Fatal("Failed to start payment poller", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := paymentPoller.Stop(stopCtx); err != nil {
				log.Error("Error stopping payment poller", zap.Error(err))
			}
		}()
		log.Info("Payment poller started",
			zap.Duration("interval", cfg.Poller.Interval),
			zap.Int("batch_size", cfg.Poller.BatchSize),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService, commissionService)
	depositHandler := handler.NewDepositHandler(depositService, receiptService)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalService)
	transferHandler := handler.NewTransferHandler(transferService)
	webhookHandler := handler.NewWebhookHandler(settlementService, log)
	adminHandler := handler.NewAdminHandler(accountService, withdrawalService, settingsService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService)
	externalHandler := handler.NewExternalHandler(depositService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - OpenTelemetry request spans
	// 4. Logger - Log requests
	// 5. Metrics - HTTP request metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetricsWithMeter(meter, meterProvider.IsEnabled()))
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Stricter per-IP limiter for login and registration attempts
	var authMW []gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authMW = append(authMW, middleware.AuthRateLimit(authLimiter))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// External charge API for partner backends, authenticated by API key
	router.ExternalRoutes(engine, externalHandler, middleware.APIKeyAuthMiddleware(apiKeyService, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhooks",
			"/api/v1/public",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Register domain route groups
	for _, group := range router.Routes(router.Handlers{
		System:     systemHandler,
		Auth:       authHandler,
		Account:    accountHandler,
		Deposit:    depositHandler,
		Withdrawal: withdrawalHandler,
		Transfer:   transferHandler,
		Webhook:    webhookHandler,
		Ticket:     ticketHandler,
		APIKey:     apiKeyHandler,
	}, authMW...) {
		r.Register(group)
	}
	r.Register(router.AdminRoutes(adminHandler, ticketHandler))

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Stop background workers before the deferred provider shutdowns run
	appCancel()

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
