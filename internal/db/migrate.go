package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

func setupGoose(dialect string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations directory: %w", err)
	}
	goose.SetBaseFS(migrationsDir)
	return nil
}

// RunMigrations applies all pending migrations. Both supported dialects share
// the same migration files.
func RunMigrations(db *sql.DB, dialect string) error {
	if err := setupGoose(dialect); err != nil {
		return err
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Debugf("%s migrations completed", dialect)
	return nil
}
