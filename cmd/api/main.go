package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	attrCsv "content-roi-service/internal/attribution/adapters/csv"
	attrHttp "content-roi-service/internal/attribution/adapters/http/fiber"
	attrDomain "content-roi-service/internal/attribution/core/domain"
	attrUsecase "content-roi-service/internal/attribution/core/usecase"

	metricsHttp "content-roi-service/internal/metrics/adapters/http/fiber"
	metricsRepoPg "content-roi-service/internal/metrics/adapters/postgres"
	metricsPorts "content-roi-service/internal/metrics/core/ports"
	metricsUsecase "content-roi-service/internal/metrics/core/usecase"

	"content-roi-service/internal/config"
	"content-roi-service/internal/logging"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "content-roi-service/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", false)
		bootLog.Fatal().Err(err).Msg("configuration error")
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)
	policy := attrDomain.InvalidRowPolicy(cfg.InvalidRowPolicy)

	// Dataset source and enriched sink (CSV files)
	source := attrCsv.NewDatasetSource(cfg.CatalogPath, cfg.UsersPath)
	enrichedSink := attrCsv.NewEnrichedSink(cfg.EnrichedPath)

	// Optional Postgres result sink
	var resultSink metricsPorts.ResultSinkPort
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open postgres")
		}
		defer db.Close()

		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping postgres")
		}

		repo := metricsRepoPg.NewReportRepository(metricsRepoPg.NewSQLDB(db))
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure result schema")
		}
		resultSink = repo
		log.Info().Msg("postgres result sink enabled")
	}

	// Usecases
	attributeUC := attrUsecase.NewAttributeUseCase(source, enrichedSink)
	reportUC := metricsUsecase.NewReportUseCase(source, resultSink)
	sensitivityUC := metricsUsecase.NewSensitivityUseCase(source)

	// HTTP (Fiber) app + handlers
	app := fiber.New()

	attributionHandler := attrHttp.NewAttributionHandler(attributeUC, cfg.WindowDays, policy)
	app.Post("/attribution/run", attributionHandler.RunAttribution)

	metricsHandler := metricsHttp.NewMetricsHandler(reportUC, sensitivityUC, cfg.WindowDays, policy)
	app.Get("/metrics/churn", metricsHandler.GetChurn)
	app.Get("/metrics/ltv", metricsHandler.GetLTV)
	app.Get("/metrics/roi", metricsHandler.GetROI)
	app.Get("/metrics/sensitivity", metricsHandler.GetSensitivity)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error().Err(err).Msg("fiber stopped")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Int("window_days", cfg.WindowDays).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("fiber shutdown error")
	}

	log.Info().Msg("server exiting")
}
