// Package main runs a TheMealDB import without starting the HTTP server
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/container"
	"github.com/recipemanager/server/internal/ports/inbound"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	force := flag.Bool("force", false, "Remove previously imported data and import again")
	flag.Parse()

	var (
		cfg      *config.Config
		logger   *zap.Logger
		importer inbound.ImportService
	)

	app := fx.New(
		fx.NopLogger,
		container.ConfigModule(*configPath),
		container.CoreModule,
		fx.Populate(&cfg, &logger, &importer),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build importer: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start importer: %v", err)
	}

	os.Exit(run(ctx, app, cfg, logger, importer, *force))
}

func run(ctx context.Context, app *fx.App, cfg *config.Config, logger *zap.Logger, importer inbound.ImportService, force bool) int {
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			logger.Error("Failed to stop importer", zap.Error(err))
		}
	}()

	if cfg.Importer.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Importer.RunTimeout)
		defer cancel()
	}

	result, err := importer.Run(ctx, inbound.ImportCommand{Force: force})
	if err != nil {
		logger.Error("Import failed", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("Failed to write result", zap.Error(err))
		return 1
	}

	if !result.Success {
		return 2
	}
	return 0
}
