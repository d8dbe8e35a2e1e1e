package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/SscSPs/secure_pay/internal/platform/config"
	"github.com/SscSPs/secure_pay/internal/repositories/database/pgsql"
	"github.com/SscSPs/secure_pay/internal/repositories/database/sqlite"
	"github.com/SscSPs/secure_pay/migrations"
	"github.com/SscSPs/secure_pay/pkg/database"
)

// openStore connects to the configured store, brings its schema up to date and returns
// the repositories with a function that releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("SQLite store ready", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() { _ = db.Close() }, nil

	default:
		if err := migratePostgres(ctx, cfg.DatabaseURL, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	}
}

// openMigrationDB opens a plain database/sql handle for golang-migrate.
func openMigrationDB(ctx context.Context, cfg *config.Config) (*sql.DB, string, func(), error) {
	if cfg.StoreDriver == config.StoreDriverSQLite {
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, "", nil, err
		}
		return db, database.DriverSQLite, func() { _ = db.Close() }, nil
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}
	return db, database.DriverPostgres, func() { _ = db.Close() }, nil
}

func migratePostgres(ctx context.Context, url string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}
	if _, err := database.MigrateUp(db, database.DriverPostgres, migrations.Postgres, "postgres", logger); err != nil {
		return err
	}
	return nil
}

// migrationSource returns the embedded migrations and their directory for driver.
func migrationSource(driver string) (fs.FS, string) {
	if driver == database.DriverSQLite {
		return migrations.SQLite, "sqlite"
	}
	return migrations.Postgres, "postgres"
}
