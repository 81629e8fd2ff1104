package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/reqtrace/backend/internal/application/access"
	"github.com/reqtrace/backend/internal/application/identity"
	appreq "github.com/reqtrace/backend/internal/application/requirement"
	appst "github.com/reqtrace/backend/internal/application/stakeholder"
	"github.com/reqtrace/backend/internal/infrastructure/auth"
	"github.com/reqtrace/backend/internal/infrastructure/cache"
	"github.com/reqtrace/backend/internal/infrastructure/config"
	"github.com/reqtrace/backend/internal/infrastructure/logger"
	"github.com/reqtrace/backend/internal/infrastructure/migration"
	"github.com/reqtrace/backend/internal/infrastructure/persistence"
	"github.com/reqtrace/backend/internal/infrastructure/printing"
	"github.com/reqtrace/backend/internal/infrastructure/telemetry"
	"github.com/reqtrace/backend/internal/interfaces/http/handler"
	"github.com/reqtrace/backend/internal/interfaces/http/middleware"
	"github.com/reqtrace/backend/internal/interfaces/http/router"
	"github.com/reqtrace/backend/migrations"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Requirement Traceability API
//	@version		1.0
//	@description	Requirement lifecycle, versioned history and traceability to tasks, stakeholders and meetings

//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Logs bridge first so every later line reaches the collector too
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		log, err = logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting requirement traceability backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver != "sqlite" {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	requirementRepo := persistence.NewGormRequirementRepository(db.DB)
	stakeholderRepo := persistence.NewGormStakeholderRepository(db.DB)
	resolver := access.NewPolicyResolver(projectRepo)

	// Application services
	requirementService := appreq.NewService(
		resolver,
		requirementRepo,
		persistence.NewGormRequirementQueryRepository(db.DB),
		persistence.NewGormTaskRepository(db.DB),
		userRepo,
		stakeholderRepo,
		persistence.NewGormTransactionScope(db.DB),
		log,
	)
	requirementMetrics, err := telemetry.NewRequirementMetrics(meterProvider.Meter("reqtrace.requirements"))
	if err != nil {
		log.Fatal("Failed to create requirement metrics", zap.Error(err))
	}
	requirementService.SetMetrics(requirementMetrics)

	if cfg.Printing.Enabled {
		pdf := printing.NewChromedpRenderer(cfg.Printing, log)
		matrixRenderer := printing.NewMatrixPDFRenderer(pdf, log)
		defer func() {
			_ = matrixRenderer.Close()
		}()
		requirementService.SetRenderer(matrixRenderer)
		log.Info("Matrix PDF export enabled")
	}

	stakeholderService := appst.NewService(
		resolver,
		stakeholderRepo,
		persistence.NewGormMeetingRepository(db.DB),
		requirementRepo,
		log,
	)
	principalService := identity.NewPrincipalService(userRepo, log)
	principalService.SetSyncInterval(cfg.Auth.SyncInterval)

	// Auth
	jwtService := auth.NewJWTService(cfg.Auth)
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:       jwtService,
		SkipPathPrefixes: cfg.Auth.SkipPathPrefixes,
		Logger:           log,
	}
	if cfg.Auth.RevocationCheck {
		if redisClient != nil {
			jwtConfig.TokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		} else {
			log.Warn("Token revocation check requires Redis, skipping")
		}
	}

	var idempotency *middleware.IdempotencyConfig
	if cfg.Idempotency.Enabled {
		opts := []cache.IdempotencyStoreFactoryOption{cache.WithLogger(log)}
		if redisClient != nil {
			opts = append(opts, cache.WithRedisClient(redisClient))
		}
		store, err := cache.NewIdempotencyStoreFactory(cfg.Idempotency, opts...).CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		idempotency = &middleware.IdempotencyConfig{Store: store, TTL: cfg.Idempotency.TTL, Logger: log}
	}

	checks := map[string]handler.Pinger{"database": handler.PingerFunc(db.Ping)}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	routerCfg := router.Config{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           corsConfig(cfg.HTTP),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		JWT:          jwtConfig,
		Meter:        meterProvider.Meter("reqtrace.http"),
		Idempotency:  idempotency,
		Requirements: handler.NewRequirementHandler(requirementService),
		Stakeholders: handler.NewStakeholderHandler(stakeholderService),
		System:       handler.NewSystemHandler(cfg.App.Name, version, checks, log),
	}
	if cfg.Auth.SyncPrincipals {
		routerCfg.PrincipalSyncer = principalService
	}
	engine, err := router.New(routerCfg)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracing shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Log export shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close sqlDB as well
	return m.Up()
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
