package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"

	"github.com/Dosada05/championship/config"
	"github.com/Dosada05/championship/db"
	"github.com/Dosada05/championship/handlers"
	"github.com/Dosada05/championship/realtime"
	"github.com/Dosada05/championship/repositories"
	api "github.com/Dosada05/championship/routes"
	"github.com/Dosada05/championship/services"
	"github.com/Dosada05/championship/storage"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.Duration("reconcile_interval", cfg.ReconcileInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище
	var store *repositories.Store
	var pinger handlers.Pinger
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store = repositories.NewMemoryStore()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database connection established")
		store = repositories.NewPostgresStore(dbConn)
		pinger = dbConn
	}

	// Архив итогов турнира (Cloudflare R2), опционально
	var archiver services.ArchiveService
	r2cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2cfg.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewArchiveService(uploader, logger)
		logger.Info("Cloudflare R2 archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(store, logger, cfg.MatchWindowHours)
	progressionService := services.NewProgressionService(store, wsHub, archiver, logger)
	logger.Info("Services initialized")

	// Планировщик: догоняет раунды, чьё завершение не дошло до координатора
	var scheduler gocron.Scheduler
	if cfg.ReconcileInterval > 0 {
		scheduler, err = gocron.NewScheduler(gocron.WithLogger(gocron.NewLogger(gocron.LogLevelWarn)))
		if err != nil {
			logger.Error("failed to create scheduler", slog.Any("error", err))
			os.Exit(1)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.ReconcileInterval),
			gocron.NewTask(func() {
				jobCtx, cancel := context.WithTimeout(ctx, cfg.ReconcileInterval)
				defer cancel()
				if err := progressionService.ReconcileActive(jobCtx); err != nil {
					logger.Error("Scheduler: reconcile run failed", slog.Any("error", err))
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			logger.Error("failed to schedule reconcile job", slog.Any("error", err))
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("reconcile scheduler started", slog.Duration("interval", cfg.ReconcileInterval))
	}

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, progressionService, logger)
	matchHandler := handlers.NewMatchHandler(progressionService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.AllowedOrigins, logger)
	healthHandler := handlers.NewHealthHandler(pinger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		},
		tournamentHandler,
		matchHandler,
		webSocketHandler,
		healthHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
		ErrorLog:    slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if scheduler != nil {
			if err := scheduler.Shutdown(); err != nil {
				logger.Error("scheduler shutdown failed", slog.Any("error", err))
			}
		}

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
