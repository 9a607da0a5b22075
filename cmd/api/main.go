package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hiring-workflow/internal/api/http"
	"github.com/spec-kit/hiring-workflow/internal/api/http/handlers"
	"github.com/spec-kit/hiring-workflow/internal/auth"
	"github.com/spec-kit/hiring-workflow/internal/config"
	"github.com/spec-kit/hiring-workflow/internal/events"
	"github.com/spec-kit/hiring-workflow/internal/notify"
	"github.com/spec-kit/hiring-workflow/internal/observability"
	"github.com/spec-kit/hiring-workflow/internal/persistence"
	"github.com/spec-kit/hiring-workflow/internal/repository"
	"github.com/spec-kit/hiring-workflow/internal/repository/memory"
	"github.com/spec-kit/hiring-workflow/internal/service"
	"github.com/spec-kit/hiring-workflow/internal/worker"
)

type repositories struct {
	users        repository.UserRepository
	companies    repository.CompanyRepository
	memberships  repository.MembershipRepository
	joinRequests repository.JoinRequestRepository
	applications repository.ApplicationRepository
	history      repository.ApplicationHistoryRepository
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing, cfg.App.Name, cfg.App.Version)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos, err := buildRepositories(pg, cfg.Postgres.SeedFile)
	if err != nil {
		logger.Fatal("failed to build repositories", zap.Error(err))
	}
	metrics := observability.NewMetrics()

	notifier, err := notify.New(cfg.Notification, redis.Client, logger)
	if err != nil {
		logger.Fatal("failed to init notifier", zap.Error(err))
	}
	notificationWorker := worker.NewNotificationWorker(notifier, logger, metrics, worker.NotificationWorkerOptions{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout(),
	})
	notificationWorker.Start(ctx)

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, notificationWorker, logger, cfg.Notification).RegisterHandlers()

	membershipService := service.NewMembershipService(service.MembershipDependencies{
		MembershipRepo: repos.memberships,
		CompanyRepo:    repos.companies,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	joinRequestService := service.NewJoinRequestService(service.JoinRequestDependencies{
		JoinRequestRepo: repos.joinRequests,
		MembershipRepo:  repos.memberships,
		CompanyRepo:     repos.companies,
		UserRepo:        repos.users,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: repos.applications,
		HistoryRepo:     repos.history,
		CompanyRepo:     repos.companies,
		MembershipRepo:  repos.memberships,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(auth.NewTokenDirectory(tokens, repos.users))

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Members:        handlers.NewMembersHandler(membershipService),
		JoinRequests:   handlers.NewJoinRequestsHandler(joinRequestService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationWorker.Stop()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

// buildRepositories picks Postgres when a pool is open and otherwise the in-memory
// store loaded from seedFile.
func buildRepositories(pg *persistence.Postgres, seedFile string) (repositories, error) {
	if pg.Enabled() {
		return repositories{
			users:        repository.NewUserRepository(pg.Pool),
			companies:    repository.NewCompanyRepository(pg.Pool),
			memberships:  repository.NewMembershipRepository(pg.Pool),
			joinRequests: repository.NewJoinRequestRepository(pg.Pool),
			applications: repository.NewApplicationRepository(pg.Pool),
			history:      repository.NewApplicationHistoryRepository(pg.Pool),
		}, nil
	}
	seed, err := memory.LoadSeedFile(seedFile)
	if err != nil {
		return repositories{}, err
	}
	store := memory.NewStore(seed)
	return repositories{
		users:        store.Users(),
		companies:    store.Companies(),
		memberships:  store.Memberships(),
		joinRequests: store.JoinRequests(),
		applications: store.Applications(),
		history:      store.History(),
	}, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
