package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/appointment-parser/internal/api/http"
	"github.com/spec-kit/appointment-parser/internal/api/http/handlers"
	"github.com/spec-kit/appointment-parser/internal/auth"
	"github.com/spec-kit/appointment-parser/internal/cache"
	"github.com/spec-kit/appointment-parser/internal/config"
	"github.com/spec-kit/appointment-parser/internal/events"
	"github.com/spec-kit/appointment-parser/internal/genai"
	"github.com/spec-kit/appointment-parser/internal/observability"
	"github.com/spec-kit/appointment-parser/internal/persistence"
	"github.com/spec-kit/appointment-parser/internal/repository"
	"github.com/spec-kit/appointment-parser/internal/service"
	"github.com/spec-kit/appointment-parser/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	genaiClient := genai.NewClient(cfg.Gemini)
	ocrCache := cache.NewOCRCache(redis.Client, cfg.Pipeline.OCRCacheTTL(), logger)

	ocrService := service.NewOCRService(genaiClient, ocrCache, logger)
	extractionService := service.NewExtractionService(genaiClient, logger)
	normalizationService, err := service.NewNormalizationService(genaiClient, cfg.Pipeline.Timezone, logger)
	if err != nil {
		logger.Fatal("failed to init normalization", zap.Error(err))
	}

	pipeline := service.NewPipelineService(service.PipelineDependencies{
		OCR:        ocrService,
		Extractor:  extractionService,
		Normalizer: normalizationService,
		Logger:     logger,
	})

	var appointmentRepo repository.AppointmentRepository
	if pool := pg.PoolHandle(); pool != nil {
		appointmentRepo = repository.NewAppointmentRepository(pool)
	}

	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		Pipeline:        pipeline,
		AppointmentRepo: appointmentRepo,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(tokenManager, cfg.Auth),
		Parse:          handlers.NewParseHandler(appointmentService),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService),
		AuthMiddleware: authMiddleware,
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
