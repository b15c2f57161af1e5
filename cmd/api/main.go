package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parking-pilot/internal/api/http"
	"github.com/spec-kit/parking-pilot/internal/api/http/handlers"
	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/config"
	"github.com/spec-kit/parking-pilot/internal/events"
	"github.com/spec-kit/parking-pilot/internal/kvstore"
	"github.com/spec-kit/parking-pilot/internal/notification"
	"github.com/spec-kit/parking-pilot/internal/observability"
	"github.com/spec-kit/parking-pilot/internal/persistence"
	"github.com/spec-kit/parking-pilot/internal/repository"
	"github.com/spec-kit/parking-pilot/internal/security"
	"github.com/spec-kit/parking-pilot/internal/service"
	"github.com/spec-kit/parking-pilot/internal/verification"
	"github.com/spec-kit/parking-pilot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	var otpStore kvstore.Store
	if cfg.Redis.UseForOTP {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		otpStore = kvstore.NewRedisStore(redis.Client, "otp:")
	} else {
		otpStore = kvstore.NewMemoryStore()
	}

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	sender := notification.NewLogSender(logger, cfg.Notification)

	otpService := verification.NewOTPService(otpStore, sender, logger, cfg.Verification.OTPTTL())
	go otpService.RunSweeper(ctx, cfg.Verification.SweepInterval())

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo: accountRepo,
		Sender:      sender,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	vehicleService := service.NewVehicleService(vehicleRepo, dispatcher)

	notificationService := service.NewNotificationService(dispatcher, sender, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	csrfService := security.NewCSRFService(kvstore.NewBoundedMemoryStore(security.DefaultCSRFCapacity))

	metrics := observability.NewMetrics()

	app := fiber.New()
	app.Use(security.Headers(cfg.App.Env == "production"))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, otpService),
		CSRF:           handlers.NewCSRFHandler(csrfService),
		Vehicles:       handlers.NewVehiclesHandler(vehicleService),
		AuthMiddleware: authMiddleware,
		CSRFService:    csrfService,
		AuthLimiter: security.NewRateLimiter(cfg.RateLimit.AuthMax,
			time.Duration(cfg.RateLimit.AuthWindowMin)*time.Minute),
		GeneralLimiter: security.NewRateLimiter(cfg.RateLimit.GeneralMax,
			time.Duration(cfg.RateLimit.GeneralWindowMin)*time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
