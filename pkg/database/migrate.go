package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for database/sql
)

// Migration drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// MigrateUp applies all pending migrations found under dir in fsys to db.
// driverName selects the migrate database driver. It returns true when at least one
// migration ran.
func MigrateUp(db *sql.DB, driverName string, fsys fs.FS, dir string, logger *slog.Logger) (bool, error) {
	m, err := newMigrator(db, driverName, fsys, dir)
	if err != nil {
		return false, err
	}
	defer release(m, driverName)

	err = m.Up()
	applied := true
	if errors.Is(err, migrate.ErrNoChange) {
		applied = false
		err = nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		logger.Info("Database schema is up to date", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty), slog.Bool("applied", applied))
	}
	return applied, nil
}

// MigrateDown rolls back steps migrations.
func MigrateDown(db *sql.DB, driverName string, fsys fs.FS, dir string, steps int) error {
	m, err := newMigrator(db, driverName, fsys, dir)
	if err != nil {
		return err
	}
	defer release(m, driverName)
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func newMigrator(db *sql.DB, driverName string, fsys fs.FS, dir string) (*migrate.Migrate, error) {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	var driver database.Driver
	switch driverName {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s driver instance for migrations: %w", driverName, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// release frees the connection held by the postgres driver. The sqlite driver's Close
// would close the caller's *sql.DB, which the caller still owns.
func release(m *migrate.Migrate, driverName string) {
	if driverName == DriverPostgres {
		_, _ = m.Close()
	}
}
