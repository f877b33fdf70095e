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

	"github.com/sfqs/ticket-system/internal/access"
	httptransport "github.com/sfqs/ticket-system/internal/api/http"
	"github.com/sfqs/ticket-system/internal/api/http/handlers"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/config"
	"github.com/sfqs/ticket-system/internal/events"
	"github.com/sfqs/ticket-system/internal/leveling"
	"github.com/sfqs/ticket-system/internal/observability"
	"github.com/sfqs/ticket-system/internal/persistence"
	"github.com/sfqs/ticket-system/internal/repository"
	"github.com/sfqs/ticket-system/internal/repository/memory"
	"github.com/sfqs/ticket-system/internal/service"
	"github.com/sfqs/ticket-system/internal/worker"
)

type repositories struct {
	users     repository.UserRepository
	tickets   repository.TicketRepository
	changelog repository.ChangelogRepository
	extraTime repository.ExtraTimeRepository
	sessions  repository.SessionStore
}

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

	table, err := leveling.NewTable(cfg.Leveling.Thresholds)
	if err != nil {
		logger.Fatal("invalid level thresholds", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis, err := persistence.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("invalid redis config", zap.Error(err))
	}
	defer redis.Close()

	dependencies := map[string]handlers.Pinger{"redis": redis}
	var repos repositories
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, os.DirFS(persistence.DefaultMigrationsDir), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repositories{
			users:     repository.NewUserRepository(pool),
			tickets:   repository.NewTicketRepository(pool),
			changelog: repository.NewChangelogRepository(pool),
			extraTime: repository.NewExtraTimeRepository(pool),
		}
		dependencies["postgres"] = pg
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:     store.Users(),
			tickets:   store.Tickets(),
			changelog: store.Changelog(),
			extraTime: store.ExtraTime(),
		}
	}
	repos.sessions = repository.NewSessionStore(redis.Client)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	dispatcher.SubscribeAll(func(_ context.Context, event events.Event) error {
		metrics.RecordEvent(string(event.Type))
		return nil
	})
	tokens := auth.NewTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     repos.users,
		SessionStore: repos.sessions,
		Tokens:       tokens,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	experienceService := service.NewExperienceService(repos.users, repos.tickets, table, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		Experience: experienceService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	extraTimeService := service.NewExtraTimeService(repos.extraTime, repos.tickets, dispatcher)
	changelogService := service.NewChangelogService(repos.changelog, dispatcher)

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifier := worker.StartNotificationWorker(ctx, notifications, cfg.Notification.QueueSize, logger)
	reconciler := worker.NewExperienceReconciler(experienceService, cfg.Leveling.ReconcileInterval(), logger)
	go reconciler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Pages:     handlers.NewPagesHandler(),
		Auth:      handlers.NewAuthHandler(authService, cfg.Auth.SecureCookies),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Engineer:  handlers.NewEngineerHandler(ticketService, experienceService, extraTimeService),
		Admin:     handlers.NewAdminHandler(authService, extraTimeService),
		Changelog: handlers.NewChangelogHandler(changelogService),
		Session:   auth.NewSessionMiddleware(tokens, repos.sessions, logger),
		Access:    auth.NewAccessMiddleware(access.DefaultPolicy(), logger).WithRecorder(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	select {
	case <-notifier.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("notification queue not drained before exit")
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
