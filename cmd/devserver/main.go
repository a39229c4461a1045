package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"todoclient/internal/adapter/database/sqlite"
	devserver "todoclient/internal/adapter/http"
	"todoclient/internal/adapter/http/handler"
	"todoclient/internal/adapter/telemetry"
	"todoclient/pkg/config"
	"todoclient/pkg/logger"
)

const serviceName = "todo-devserver"

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultPaths())
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	appLogger, err := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.Log.Level,
		LokiURL:     cfg.Log.LokiURL,
	})
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer appLogger.Sync()

	tc, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsAddr:    cfg.Telemetry.MetricsAddr,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, appLogger.Zap())
	if err != nil {
		log.Fatal("Failed to initialize telemetry: ", err)
	}
	defer tc.Shutdown(context.Background())

	tc.AppMetrics.StartSystemMetrics(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlLevel, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		sqlLevel = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Devserver.Database), 0o700); err != nil {
		log.Fatal("Failed to create database directory: ", err)
	}

	db, err := sqlite.Open(cfg.Devserver.Database, sqlite.Options{
		LogWriter: os.Stderr,
		LogLevel:  sqlLevel,
	})
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	catalog := handler.NewSuggestionCatalog(handler.DefaultSuggestions(), 0)
	if cfg.Devserver.SuggestionsFile != "" {
		catalog, err = handler.LoadSuggestionCatalog(cfg.Devserver.SuggestionsFile, 0)
		if err != nil {
			log.Fatal("Failed to load suggestions: ", err)
		}
	}

	container := devserver.NewContainer(db, devserver.Options{
		Secret:         cfg.Devserver.Secret,
		SessionTTL:     cfg.Devserver.SessionTTL,
		SecureCookies:  cfg.Environment == "production",
		AllowedOrigins: cfg.Devserver.AllowedOrigins,
		Catalog:        catalog,
		Telemetry:      tc.Probe(),
		Metrics:        tc.AppMetrics,
		Logger:         appLogger,
	})

	if cfg.Devserver.SeedUsername != "" {
		if _, err := container.Seed(ctx, cfg.Devserver.SeedUsername, cfg.Devserver.SeedPassword); err != nil {
			log.Fatal("Failed to seed account: ", err)
		}
		appLogger.Info("Seeded account", zap.String("username", cfg.Devserver.SeedUsername))
	}

	err = devserver.Serve(ctx, container, devserver.ServeConfig{
		AuthAddr: cfg.Devserver.AuthAddr,
		APIAddr:  cfg.Devserver.APIAddr,
	}, appLogger)
	if err != nil {
		appLogger.Error("Server stopped", zap.Error(err))
		os.Exit(1)
	}

	appLogger.Info("Shutting down gracefully...")
}
