package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/SscSPs/secure_pay/migrations"
	"github.com/SscSPs/secure_pay/pkg/database"
)

// Open opens the database at path and applies the embedded schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := database.MigrateUp(db, database.DriverSQLite, migrations.SQLite, "sqlite", logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
