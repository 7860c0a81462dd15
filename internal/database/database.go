package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // embedded SQLite driver
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the connection settings for the persistence backend.
type Config struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite only; ":memory:" for an in-memory database
}

// Open establishes the database connection for the configured driver and
// verifies it with a ping.
func Open(cfg Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		db, err = sql.Open("postgres", connStr)
	case DriverSQLite:
		db, err = sql.Open("sqlite", cfg.Path)
		if db != nil {
			// modernc.org/sqlite serializes writes; a single connection avoids
			// table-lock errors on concurrent transactions.
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

// EnsureSchema applies the DDL for the given driver. Statements are
// idempotent (CREATE TABLE IF NOT EXISTS), so startup can always run it.
func EnsureSchema(db *sql.DB, driver string) error {
	ddl, err := schemaFor(driver)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}
	return nil
}
