// Package main - точка входа для StudyHub API сервера.
//
// StudyHub - персональный трекер обучения: курсы с уроками, экзаменами
// и домашними заданиями, цели, ежедневные серии и достижения.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application layer
	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/application/eventhandler"
	"github.com/studyhub/course-tracker-hub/internal/application/query"
	"github.com/studyhub/course-tracker-hub/internal/application/saga"

	// Domain layer
	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"

	// Infrastructure layer
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/external/identity"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/messaging"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/postgres"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/redis"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/scheduler"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/scheduler/jobs"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/studyhub/course-tracker-hub/internal/interface/http"

	// Packages
	"github.com/studyhub/course-tracker-hub/config"
	"github.com/studyhub/course-tracker-hub/pkg/logger"
	"github.com/studyhub/course-tracker-hub/pkg/retry"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupSlog(cfg)
	log.Info("starting StudyHub",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	appLogger := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: true,
	})

	// Календарные дни (серии, дедлайны) считаются в настроенной таймзоне.
	timeutil.SetLocation(cfg.App.Location)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К ХРАНИЛИЩУ
	// ─────────────────────────────────────────────────────────────────────────
	var (
		courseRepo      course.Repository
		goalRepo        goal.Repository
		streakRepo      streak.Repository
		achievementRepo achievement.Repository

		accountRepo    user.AccountRepository
		resetTokenRepo user.ResetTokenRepository

		// pgStreakRepo держим отдельно: prune-задача работает напрямую
		// с таблицей, минуя кеш.
		pgStreakRepo *postgres.StreakRepository

		healthChecker httpserver.HealthChecker
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		// При холодном старте база может подниматься дольше приложения.
		conn, err := retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
			c, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
			if err != nil {
				return nil, retry.Retryable(err)
			}
			return c, nil
		},
			retry.WithMaxAttempts(5),
			retry.WithInitialDelay(time.Second),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				log.Warn("database not ready, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		if err := conn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("database connection established")

		// ─────────────────────────────────────────────────────────────────
		// 4. ЗАПУСК МИГРАЦИЙ
		// ─────────────────────────────────────────────────────────────────
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if applied, err := migrator.AppliedVersions(ctx); err != nil {
			log.Warn("failed to read migration status", "error", err)
		} else {
			log.Info("migrations completed", "applied", len(applied))
		}

		store := postgres.NewBlobStore(conn)
		courseRepo = postgres.NewCourseRepository(store)
		goalRepo = postgres.NewGoalRepository(store)
		achievementRepo = postgres.NewAchievementRepository(store)
		pgStreakRepo = postgres.NewStreakRepository(store)
		streakRepo = pgStreakRepo

		accountRepo = postgres.NewAccountRepository(conn)
		resetTokenRepo = postgres.NewResetTokenRepository(conn, cfg.Identity.ResetTTL)
		healthChecker = conn
	} else {
		// Режим без базы данных: все данные живут в памяти процесса.
		// Validate() не пускает такую конфигурацию в production.
		log.Warn("DATABASE_URL is not set, using in-memory storage")

		store := inmem.NewStore()
		courseRepo = inmem.NewCourseRepository(store)
		goalRepo = inmem.NewGoalRepository(store)
		achievementRepo = inmem.NewAchievementRepository(store)
		streakRepo = inmem.NewStreakRepository(store)

		accountRepo = inmem.NewAccountRepository()
		resetTokenRepo = inmem.NewResetTokenRepository(cfg.Identity.ResetTTL)
		healthChecker = alwaysHealthy{}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureCacheLayer) {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer cache.Close()
			courseRepo = redis.NewCachedCourseRepository(courseRepo, cache, log)
			goalRepo = redis.NewCachedGoalRepository(goalRepo, cache, log)
			achievementRepo = redis.NewCachedAchievementRepository(achievementRepo, cache, log)
			streakRepo = redis.NewCachedStreakRepository(streakRepo, cache, log)
			log.Info("Redis connection established, cache layer enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries, Sagas)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	recordActivityCmd := command.NewRecordActivityHandler(streakRepo, eventBus)
	createCourseCmd := command.NewCreateCourseHandler(courseRepo, eventBus)
	updateCourseCmd := command.NewUpdateCourseHandler(courseRepo, goalRepo, recordActivityCmd, eventBus)
	deleteCourseCmd := command.NewDeleteCourseHandler(courseRepo, eventBus)
	manageGoalCmd := command.NewManageGoalHandler(goalRepo, courseRepo, eventBus)
	resetStreakCmd := command.NewResetStreakHandler(streakRepo, eventBus)

	coursesQuery := query.NewGetCoursesHandler(courseRepo)
	goalsQuery := query.NewGetGoalsHandler(goalRepo, courseRepo)
	streakQuery := query.NewGetStreakHandler(streakRepo)
	achievementsQuery := query.NewGetAchievementsHandler(achievementRepo)
	dashboardQuery := query.NewGetDashboardHandler(coursesQuery, goalsQuery, streakQuery, achievementsQuery)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Features.IsEnabled(config.FeatureAchievements) {
		log.Info("registering achievement event handler...")
		achievementFlow := saga.NewAchievementFlow(courseRepo, goalRepo, streakRepo, achievementRepo, eventBus)
		progressHandler := eventhandler.NewOnProgressEventHandler(achievementFlow, log)
		if err := progressHandler.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register achievement handler: %w", err)
		}
	} else {
		log.Info("achievement evaluation disabled by feature flag")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ IDENTITY PROVIDER
	// ─────────────────────────────────────────────────────────────────────────
	var (
		identityProvider user.IdentityProvider
		tokenVerifier    user.TokenVerifier
		resetCompleter   httpserver.ResetCompleter
	)

	switch cfg.Identity.Provider {
	case config.IdentityProviderHosted:
		log.Info("using hosted identity provider", "base_url", cfg.Identity.BaseURL)
		clientCfg := identity.DefaultClientConfig(cfg.Identity.BaseURL)
		clientCfg.APIKey = cfg.Identity.APIKey
		clientCfg.Timeout = cfg.Identity.RequestTimeout
		clientCfg.Logger = log
		clientCfg.Debug = cfg.App.Debug

		client := identity.NewClient(clientCfg)
		identityProvider = client
		tokenVerifier = client
		// Обмен reset-токена на новый пароль происходит на стороне
		// провайдера, локального завершения нет.
		resetCompleter = nil

	default:
		log.Info("using local identity provider")
		tokens := service.NewTokenService(cfg.Identity.JWTSecret, cfg.Identity.TokenTTL)

		var mailer service.Mailer
		if cfg.Email.Backend == config.EmailBackendSendGrid {
			mailer = service.NewSendGridMailer(
				cfg.Email.SendGridAPIKey,
				cfg.Email.FromName,
				cfg.Email.FromAddress,
				cfg.App.Name,
				log,
			)
		} else {
			mailer = service.NewConsoleMailer(log)
		}

		local := service.NewLocalIdentityProvider(
			accountRepo,
			resetTokenRepo,
			tokens,
			mailer,
			cfg.App.BaseURL,
			log,
		)
		identityProvider = local
		tokenVerifier = local
		resetCompleter = local
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ЗАПУСК SCHEDULER (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && cfg.Features.IsEnabled(config.FeaturePruneJob) && pgStreakRepo != nil {
		log.Info("starting scheduler...")
		sched = scheduler.New(scheduler.Config{
			Logger:   log,
			Timezone: cfg.App.Location,
		})

		pruneJob := jobs.NewPruneActivityJob(pgStreakRepo, log)
		pruneSchedule := scheduler.NewDailySchedule(cfg.Scheduler.PruneHour, cfg.Scheduler.PruneMinute)
		if err := sched.Register(pruneJob, pruneSchedule); err != nil {
			return fmt.Errorf("failed to register prune job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		log.Info("scheduler started",
			"prune_at", fmt.Sprintf("%02d:%02d", cfg.Scheduler.PruneHour, cfg.Scheduler.PruneMinute),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout

	httpDeps := httpserver.Dependencies{
		CreateCourse:   createCourseCmd,
		UpdateCourse:   updateCourseCmd,
		DeleteCourse:   deleteCourseCmd,
		ManageGoal:     manageGoalCmd,
		RecordActivity: recordActivityCmd,
		ResetStreak:    resetStreakCmd,

		GetCourses:      coursesQuery,
		GetGoals:        goalsQuery,
		GetStreak:       streakQuery,
		GetAchievements: achievementsQuery,
		GetDashboard:    dashboardQuery,

		Identity:       identityProvider,
		Verifier:       tokenVerifier,
		ResetCompleter: resetCompleter,

		Features:      cfg.Features,
		Logger:        appLogger,
		HealthChecker: healthChecker,
	}

	server := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("StudyHub is running", "address", cfg.HTTP.Addr())
	errCh := server.StartAsync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("http server error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	if sched != nil {
		log.Info("stopping scheduler...")
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
			shutdownErr = err
		}
	}

	// Event bus и база данных закроются через defer.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupSlog настраивает структурированное логирование для инфраструктуры.
func setupSlog(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// alwaysHealthy заменяет проверку базы данных в режиме без хранилища.
type alwaysHealthy struct{}

func (alwaysHealthy) Ping(context.Context) error { return nil }
