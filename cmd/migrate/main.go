package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 1, "number of migrations to revert when direction=down")

	cfg := config.MustLoad()

	// MustLoad only parses flags when CONFIG_PATH is unset
	if !flag.Parsed() {
		flag.Parse()
	}

	repos, _, _, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer repos.Close()

	path := cfg.Database.MigrationsPath

	switch *direction {
	case "up":
		err = repos.MigrateUp(path)
	case "down":
		err = repos.MigrateDown(path, *steps)
	default:
		slog.Error("❌ Unknown migration direction", slog.String("direction", *direction))
		os.Exit(2)
	}

	if err != nil {
		slog.Error("❌ Migration failed", slog.String("direction", *direction), slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("✅ Migrations complete", slog.String("direction", *direction), slog.String("path", path))
}
