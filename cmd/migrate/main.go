// Package main runs the Postgres schema migrations
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/persistence/migrations"
	"github.com/recipemanager/server/pkg/logger"
	"go.uber.org/zap"
)

const usage = `Usage: migrate [-config path] <command>

Commands:
  up            apply all pending migrations
  down          roll back the last migration
  reset         roll back every migration
  version       print the current version
  status        print applied and pending migrations
  force <n>     set the version without running migrations
`

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Database.Driver != "postgres" {
		log.Fatal("Migrations require the postgres driver; sqlite schemas are auto-migrated",
			zap.String("driver", cfg.Database.Driver))
	}

	if err := run(cfg, log, flag.Args()); err != nil {
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger, args []string) error {
	m, err := migrations.Open(cfg.GetMigrationURL(), log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "reset":
		return m.Reset()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "status":
		status, err := m.Status()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
