package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/absensi-backend-go/internal/config"
	"github.com/cmlabs-hris/absensi-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absensi-backend-go/internal/repository/postgresql"
)

const defaultSeedPassword = "123456"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("Error migrating database", "error", err)
		os.Exit(1)
	}

	password := os.Getenv("SEED_DEFAULT_PASSWORD")
	if password == "" {
		password = defaultSeedPassword
		slog.Warn("SEED_DEFAULT_PASSWORD not set, using the default password")
	}

	created, err := fixtures.SeedEmployees(ctx, db, postgresql.NewEmployeeRepository(db), password)
	if err != nil {
		slog.Error("Error seeding employees", "error", err)
		os.Exit(1)
	}

	slog.Info("Seed completed", "employees_created", created)
}
