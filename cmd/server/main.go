package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/petmarket-trust/internal/config"
	"github.com/ignatzorin/petmarket-trust/internal/db"
	"github.com/ignatzorin/petmarket-trust/internal/goroutine"
	httpRouter "github.com/ignatzorin/petmarket-trust/internal/http/router"
	"github.com/ignatzorin/petmarket-trust/internal/infrastructure/persistence"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/handler"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/repository"
	"github.com/ignatzorin/petmarket-trust/internal/service"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
	"github.com/ignatzorin/petmarket-trust/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	lg := logger.Get()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		}); err != nil {
			lg.WithError(err).Error("main: sentry не инициализирован")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if _, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		lg.Fatalf("main: ошибка миграций: %v", err)
	}

	// Репозитории.
	verificationRepo := persistence.NewVerificationRepositoryAdapter(dbConn)
	reportRepo := persistence.NewReportRepositoryAdapter(dbConn)
	accountRepo := repository.NewAccountRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	syncFailureRepo := repository.NewSyncFailureRepository(dbConn)

	// Заявки pending для заводчиков, у которых их ещё нет.
	if _, err := service.NewBootstrapService(verificationRepo).Run(ctx); err != nil {
		lg.Fatalf("main: ошибка инициализации журналов: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Побочные эффекты модерации.
	journal := service.NewSyncJournal(
		syncFailureRepo,
		service.SentryReporter{},
		accountRepo,
		moderation.NewEntityStatusReader(verificationRepo, reportRepo),
	)
	dispatcher := service.NewNotificationDispatcher(notificationRepo, hub, cfg.NotificationQueueSize)
	dispatcher.SetFailureRecorder(journal)
	dispatcher.Start(cfg.NotificationWorkers)
	defer dispatcher.Close()

	engine := moderation.NewEngine(
		verificationRepo,
		reportRepo,
		accountRepo,
		dispatcher,
		journal,
		moderation.FixedWindowDeadline{Window: cfg.DocumentsDeadline},
	)
	listingService := listing.NewService(verificationRepo, reportRepo, listing.Config{
		Pagination: pagination.Config{
			DefaultPageSize: cfg.ListDefaultPageSize,
			MaxPageSize:     cfg.ListMaxPageSize,
		},
		QueryTimeout: cfg.ListQueryTimeout,
	})
	submissionService := submission.NewService(verificationRepo, reportRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Health:            handler.NewHealthHandler(dbConn),
		WS:                handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Verification:      handler.NewVerificationHandler(submissionService),
		Report:            handler.NewReportHandler(submissionService, listingService),
		Notification:      handler.NewNotificationHandler(notificationService),
		AdminVerification: handler.NewAdminVerificationHandler(engine, listingService),
		AdminReport:       handler.NewAdminReportHandler(engine, listingService),
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpRouter.SetupRouter(cfg, handlers, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	lg.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Errorf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Get().WithError(err).Error("main: ошибка закрытия базы")
	}
}
