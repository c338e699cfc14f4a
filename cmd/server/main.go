package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	internalMiddleware "github.com/lissto-dev/composer/internal/middleware"
	"github.com/lissto-dev/composer/internal/server"
	"github.com/lissto-dev/composer/pkg/config"
	"github.com/lissto-dev/composer/pkg/logging"
	pkgServer "github.com/lissto-dev/composer/pkg/server"
)

// Set via -ldflags at build time
var (
	version   = "dev"
	buildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config-path", "", "Path to configuration file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if configPath != "" {
		log.Printf("Configuration loaded from %s", configPath)
	}

	// Initialize structured logging
	if err := logging.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() { _ = logging.Logger.Sync() }()
	logging.Logger.Info("Structured logging initialized",
		zap.String("level", cfg.Logging.Level),
		zap.String("format", cfg.Logging.Format))

	instanceID, err := pkgServer.GetOrCreateInstanceID(cfg.Server.InstanceIDFile)
	if err != nil {
		logging.Logger.Fatal("Failed to get or create instance ID", zap.Error(err))
	}
	logging.Logger.Info("Instance ID initialized", zap.String("id", instanceID))

	if cfg.Server.PublicURL == "" {
		logging.Logger.Info("No public URL configured")
	}

	converter, err := server.NewConverter(cfg.Kompose)
	if err != nil {
		logging.Logger.Fatal("Failed to create converter", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = server.NewValidator()

	e.Use(internalMiddleware.LoggerMiddleware())
	e.Use(internalMiddleware.RecoverMiddleware())
	e.Use(internalMiddleware.CORSMiddleware())
	e.Use(internalMiddleware.InstanceIDMiddleware(instanceID))

	srv := server.New(e, cfg, converter, instanceID, &server.VersionInfo{
		Version:   version,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	})
	logging.Logger.Info("Server initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("Shutdown failed", zap.Error(err))
	}
}
