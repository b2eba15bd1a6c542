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

	httptransport "github.com/spec-kit/expedition-service/internal/api/http"
	"github.com/spec-kit/expedition-service/internal/api/http/handlers"
	"github.com/spec-kit/expedition-service/internal/auth"
	"github.com/spec-kit/expedition-service/internal/config"
	"github.com/spec-kit/expedition-service/internal/crypto"
	"github.com/spec-kit/expedition-service/internal/events"
	"github.com/spec-kit/expedition-service/internal/observability"
	"github.com/spec-kit/expedition-service/internal/persistence"
	"github.com/spec-kit/expedition-service/internal/repository"
	"github.com/spec-kit/expedition-service/internal/service"
	"github.com/spec-kit/expedition-service/internal/tiny"
	"github.com/spec-kit/expedition-service/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	cipher, err := crypto.NewCipher(cfg.Crypto.KeyHex)
	if err != nil {
		logger.Fatal("failed to init cipher", zap.Error(err))
	}

	pool := pg.PoolHandle()
	workspaceRepo := repository.NewWorkspaceRepository(pool)
	settingsRepo := repository.NewTinySettingsRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)
	pickupRepo := repository.NewPickupRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	occurrenceRepo := repository.NewOccurrenceRepository(pool)
	carrierRepo := repository.NewCarrierRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	vaultService := service.NewVaultService(service.VaultDependencies{
		WorkspaceRepo: workspaceRepo,
		SettingsRepo:  settingsRepo,
		Cipher:        cipher,
		Logger:        logger,
	})
	tokenStore := service.NewTokenStore(redis.Client, time.Duration(cfg.Tiny.AccessTokenTTLMin)*time.Minute)

	legacyClient := tiny.NewLegacyClient(cfg.Tiny, logger)
	oauthClient := tiny.NewOAuthClient(cfg.Tiny, logger)

	authService := service.NewAuthService(*cfg, operatorRepo)
	carrierService := service.NewCarrierService(carrierRepo)
	pickupService := service.NewPickupService(service.PickupDependencies{
		PickupRepo:     pickupRepo,
		TimelineRepo:   timelineRepo,
		OccurrenceRepo: occurrenceRepo,
		Dispatcher:     dispatcher,
	})
	orderSyncService := service.NewOrderSyncService(service.OrderSyncDependencies{
		OAuth:         oauthClient,
		Legacy:        legacyClient,
		Tokens:        tokenStore,
		Credentials:   vaultService,
		Dispatcher:    dispatcher,
		Logger:        logger,
		DefaultDryRun: cfg.Tiny.DryRunDefault,
	})
	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), operatorRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Operators: handlers.NewOperatorsHandler(authService),
		Pickups:   handlers.NewPickupsHandler(pickupService),
		Carriers:  handlers.NewCarriersHandler(carrierService),
		Settings:  handlers.NewSettingsHandler(vaultService),
		Tiny: handlers.NewTinyHandler(handlers.TinyHandlerDependencies{
			Cfg:    cfg.Tiny,
			Vault:  vaultService,
			Legacy: legacyClient,
			OAuth:  oauthClient,
			Tokens: tokenStore,
			Sync:   orderSyncService,
		}),
		AuthMiddleware: authMiddleware,
		Workspace:      handlers.WorkspaceResolver(vaultService),
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
