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

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/validation"
	"github.com/spec-kit/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
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

	var (
		ticketRepo repository.TicketRepository
		userRepo   repository.UserRepository
	)
	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		userRepo = repository.NewUserRepository(pg.PoolHandle())
	} else {
		db := memory.New()
		ticketRepo = memory.NewTicketRepository(db)
		userRepo = memory.NewUserRepository(db)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("supportdesk")
	dispatcher := events.NewInMemoryDispatcher()
	validator := validation.New()

	notificationService := service.NewNotificationService(dispatcher, userRepo, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	worker.StartEventMetrics(dispatcher, metrics)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Validator:  validator,
		Logger:     logger,
	})
	accountService := service.NewAccountService(cfg.Auth, userRepo, validator)
	if cfg.UsesMemoryStore() {
		seedAccounts(ctx, accountService, cfg.Seed, logger)
	}
	authMiddleware := auth.NewAuthMiddleware(accountService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout)

	deps := []handlers.Dependency{{Name: "redis", Ping: redis.Ping, Optional: true}}
	if pg.Configured() {
		deps = append(deps, handlers.Dependency{Name: "postgres", Ping: pg.Ping})
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps...),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    httptransport.NewRateLimiter(redis.Cmdable(), cfg.RateLimit.WritesPerMinute, time.Minute, logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// seedAccounts fills the empty in-memory store with the configured accounts
// and logs a bearer token for each so the API can be used right away.
func seedAccounts(ctx context.Context, accounts *service.AccountService, seed config.SeedConfig, logger *zap.Logger) {
	seeded, err := accounts.Seed(ctx, seed)
	if err != nil {
		logger.Fatal("failed to seed accounts", zap.Error(err))
	}
	if len(seeded) == 0 {
		logger.Warn("in-memory store has no accounts; set SEED_ADMIN_EMAIL or SEED_STUDENT_EMAIL")
		return
	}
	for _, account := range seeded {
		logger.Info("seeded account",
			zap.String("user_id", account.User.ID),
			zap.String("email", account.User.Email),
			zap.String("role", string(account.User.Role)),
			zap.String("token", account.Token),
			zap.Time("expires_at", account.ExpiresAt),
		)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
