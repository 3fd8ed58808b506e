// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/templates/social-backend/internal/admin"
	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/health"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
	"github.com/carterperez-dev/templates/social-backend/internal/post"
	"github.com/carterperez-dev/templates/social-backend/internal/server"
	"github.com/carterperez-dev/templates/social-backend/internal/user"
	"github.com/carterperez-dev/templates/social-backend/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry, tracing disabled", "error", err)
		telemetry = core.NewNoopTelemetry(cfg.Otel.ServiceName)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	core.ConfigurePagination(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	passwords, err := core.NewPasswordHasher(core.PasswordParams{
		Memory:      cfg.Password.MemoryKiB,
		Iterations:  cfg.Password.Iterations,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return err
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	notificationSvc := notification.NewService(
		notification.NewRepository(db.DB),
		logger,
	)

	userSvc := user.NewService(user.NewRepository(db.DB), notificationSvc, logger)
	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		core.NewTokenBlacklist(redis.Client),
		passwords,
		logger,
	)
	postSvc := post.NewService(post.NewRepository(db.DB), notificationSvc, logger)
	adminSvc := admin.NewService(admin.NewRepository(db.DB))

	healthHandler := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP(trustedProxies))
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	if cfg.Metrics.Enabled {
		router.Use(metrics.InstrumentHandler(cfg.Metrics.Path))
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Name: "global",
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen:     true,
			LocalIdleTTL: cfg.RateLimit.LocalIdleTTL,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Name: "login",
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		FailOpen:     true,
		LocalIdleTTL: cfg.RateLimit.LocalIdleTTL,
	})

	healthHandler.RegisterRoutes(router)
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminAuth := middleware.AuthenticatorWithRole(authSvc, middleware.RoleAdmin)

	auth.NewHandler(authSvc).RegisterRoutes(router, authenticator, loginLimiter.Handler)

	userHandler := user.NewHandler(userSvc)
	userHandler.RegisterRoutes(router, authenticator, optionalAuth)
	userHandler.RegisterAdminRoutes(router, adminAuth,
		middleware.RequireCapability(middleware.CapManageUsers))

	post.NewHandler(postSvc).RegisterRoutes(router, authenticator, optionalAuth)
	notification.NewHandler(notificationSvc).RegisterRoutes(router, authenticator)

	admin.NewHandler(adminSvc, admin.HandlerConfig{
		DBStats:    db.Stats,
		DBPing:     db.Ping,
		RedisStats: redis.PoolStats,
		RedisPing:  redis.Ping,
	}).RegisterRoutes(router, adminAuth,
		middleware.RequireCapability(middleware.CapPlatformStats))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func migrate(databaseURL string, logger *slog.Logger) error {
	m, err := core.NewMigrator(databaseURL, migrations.FS)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	changed, err := m.Up()
	if err != nil {
		return err
	}

	version, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("database schema ready", "version", version, "migrated", changed)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
