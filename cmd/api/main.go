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

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/repository/sqlite"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	taxonomy, err := config.LoadTaxonomy(cfg.Taxonomy)
	if err != nil {
		logger.Fatal("failed to load taxonomy", zap.Error(err))
	}

	store, dbCheck, closeStore := openStore(ctx, cfg.Database, logger)
	defer closeStore()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var sessions auth.SessionStore
	if redis != nil {
		sessions = auth.NewRedisSessionStore(redis.Client, cfg.Redis.KeyPrefix, cfg.Auth.SessionTTL())
	} else {
		sessions = auth.NewMemorySessionStore(cfg.Auth.SessionTTL())
		worker.StartSessionSweeper(ctx, sessions, sessionSweepInterval, logger)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	identityService := service.NewIdentityService(cfg.Auth, service.IdentityDependencies{
		UserRepo:   store.Users,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if _, err := identityService.EnsureSeedAdmin(ctx); err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	}

	policy := auth.Policy{}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets,
		CommentRepo: store.Comments,
		Taxonomy:    taxonomy,
		Policy:      policy,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	metrics := observability.NewMetrics()
	sessionMiddleware := auth.NewSessionMiddleware(
		auth.NewCookieSigner(cfg.Auth.SecretKey),
		identityService,
		cfg.Auth.CookieName,
		cfg.App.IsProduction(),
	)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"database": dbCheck,
			"sessions": sessions,
		}, metrics),
		Home:        handlers.NewHomeHandler(ticketService),
		Users:       handlers.NewUsersHandler(identityService, sessionMiddleware),
		Tickets:     handlers.NewTicketsHandler(ticketService),
		Admin:       handlers.NewAdminTicketsHandler(ticketService),
		Sessions:    sessionMiddleware,
		AuthLimiter: httptransport.NewRateLimiter(cfg.RateLimit),
		Policy:      policy,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore connects the configured database, applies migrations and returns its repositories.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.Store, handlers.Pinger, func()) {
	if cfg.IsPostgres() {
		pg, err := persistence.NewPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.RunMigrations {
			if err := persistence.MigratePostgres(ctx, pg.Pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewPostgresStore(pg.Pool), pg, pg.Close
	}

	db, err := persistence.NewSQLite(ctx, cfg.URL, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	if cfg.RunMigrations {
		if err := persistence.MigrateSQLite(ctx, db.DB, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return sqlite.NewStore(db.DB), db, db.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
