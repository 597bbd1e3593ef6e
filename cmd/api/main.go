package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lockwise/internal/api"
	"lockwise/internal/config"
	"lockwise/internal/database"
	"lockwise/internal/domain"
	"lockwise/internal/events"
	"lockwise/internal/export"
	"lockwise/internal/google"
	"lockwise/internal/logging"
	"lockwise/internal/metrics"
	"lockwise/internal/notify"
	"lockwise/internal/repository"
	"lockwise/internal/schedule"
	"lockwise/internal/service"
	"lockwise/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	grid, err := schedule.NewGrid(cfg.Schedule.Open, cfg.Schedule.Close, cfg.Schedule.SlotMinutes)
	if err != nil {
		return fmt.Errorf("build schedule grid: %w", err)
	}
	engine := schedule.NewEngine(grid)

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	cache := buildAvailabilityCache(redisClient, &logger)
	eventBus := events.NewEventBus()

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without notifications")
	}
	notifier.SubscribeToBus(eventBus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}

	bookingService := service.NewBookingService(db, engine, cache, eventBus, syncWorker, cfg.Schedule.MaxAdvanceDays, &logger)
	catalogService := service.NewCatalogService(db, &logger)
	crmService := service.NewCrmService(db, &logger)

	if err := catalogService.LoadCatalog(ctx, cfg.Catalog.Path); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog load failed, continuing with existing services")
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	var exporter *export.Exporter
	if cfg.Exports.Path != "" {
		exporter = export.NewExporter(cfg.Exports.Path, grid, &logger)
	}

	httpServer := api.NewHTTPServer(cfg.API, bookingService, catalogService, crmService, exporter, &logger)
	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client, err := repository.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func buildAvailabilityCache(redisClient *redis.Client, logger *zerolog.Logger) domain.AvailabilityCache {
	fallback := repository.NewMemoryAvailabilityCache(0)
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisAvailabilityCache(redisClient, 0, logger)
	return repository.NewFailoverAvailabilityCache(primary, fallback, logger)
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SheetsWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets sync")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sheetsService.TestConnection(pingCtx); err != nil {
		if email, emailErr := google.ServiceAccountEmail(cfg.Google.CredentialsFile); emailErr == nil {
			logger.Warn().Err(err).Str("service_account", email).
				Msg("google sheets unreachable; share the spreadsheet with the service account")
		} else {
			logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets sync")
		}
		return nil
	}
	logger.Info().Msg("google sheets connected")

	go resyncSheets(ctx, cfg, db, sheetsService, logger)

	w := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, logger)
	go w.Start(ctx)
	return w
}

// resyncSheets rewrites the bookings sheet from the database on startup
// so rows edited or lost while the service was down are reconciled.
func resyncSheets(ctx context.Context, cfg *config.Config, db *database.DB, sheets *google.SheetsService, logger *zerolog.Logger) {
	start := time.Now().AddDate(0, 0, -7)
	end := time.Now().AddDate(0, 0, cfg.Schedule.MaxAdvanceDays)

	bookings, err := db.GetBookingsByDateRange(ctx, start, end, "")
	if err != nil {
		logger.Warn().Err(err).Msg("sheets resync: load bookings failed")
		return
	}

	if err := sheets.ReplaceBookingsSheet(ctx, bookings); err != nil {
		logger.Warn().Err(err).Msg("sheets resync failed")
		return
	}
	logger.Info().Int("rows", len(bookings)).Msg("bookings sheet resynced")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}
