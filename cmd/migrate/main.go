package main

// Run credential store migrations for the configured SQL backend:
//   CREDENTIAL_STORE=postgres go run ./cmd/migrate
//   CREDENTIAL_STORE=sqlite go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"

	"cv-improver/internal/shared/config"
	"cv-improver/internal/shared/storage/db"
	"cv-improver/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Setup(cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultCLIOptions())
	var (
		sqlDB  *sql.DB
		driver string
		err    error
	)
	switch cfg.CredentialStore {
	case config.StorePostgres:
		driver = db.DriverPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	case config.StoreSQLite:
		driver = db.DriverSQLite
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath, opts)
	default:
		log.Printf("CREDENTIAL_STORE=%s has no migrations", cfg.CredentialStore)
		return
	}
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, driver); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"driver": driver})
}
