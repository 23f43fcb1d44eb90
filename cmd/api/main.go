package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/school-portal/internal/api/http"
	"github.com/spec-kit/school-portal/internal/api/http/handlers"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/config"
	"github.com/spec-kit/school-portal/internal/events"
	"github.com/spec-kit/school-portal/internal/observability"
	"github.com/spec-kit/school-portal/internal/persistence"
	"github.com/spec-kit/school-portal/internal/ratelimit"
	"github.com/spec-kit/school-portal/internal/repository"
	"github.com/spec-kit/school-portal/internal/service"
	"github.com/spec-kit/school-portal/internal/worker"
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

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("failed to build token codec", zap.Error(err))
	}

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	messageRepo := repository.NewGroupMessageRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	limiter := ratelimit.NewLoginLimiter(redis.Client, logger,
		cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Codec:      codec,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	})
	directoryService := service.NewDirectoryService(contactRepo, messageRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(codec)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Contacts:       handlers.NewContactsHandler(directoryService),
		Messages:       handlers.NewMessagesHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
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
