package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// OpenSQLite opens (creating if needed) the sqlite database file at path.
// The parent directory is created when missing.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	// busy_timeout: concurrent writers wait instead of failing with SQLITE_BUSY
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Connect(sqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Debugf("sqlite database opened: %s", path)
	return db, nil
}
