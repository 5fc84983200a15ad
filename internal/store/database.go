// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrations embed.FS

// Dialect identifies the SQL flavour of the connected database.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectMySQL  Dialect = "mysql"
)

// migrationsDir returns the embedded migrations directory for the dialect.
func (d Dialect) migrationsDir() string {
	if d == DialectMySQL {
		return "migrations/mysql"
	}
	return "migrations/sqlite"
}

// DBConfig holds database configuration options.
type DBConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns sensible pool defaults.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"foreign_keys(1)",     // Enforce ON DELETE RESTRICT
	"journal_mode(WAL)",   // Write-Ahead Logging for better concurrency
	"busy_timeout(5000)",  // Wait 5s when database is locked
	"synchronous(NORMAL)", // Good balance of safety and speed
	"cache_size(-64000)",  // 64MB cache
	"temp_store(MEMORY)",  // Store temp tables in memory
}

// Open connects to the configured driver and returns the handle with its dialect.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	switch driver {
	case "mysql":
		db, err := NewMySQL(dsn)
		return db, DialectMySQL, err
	case "sqlite", "":
		db, err := NewDB(dsn)
		return db, DialectSQLite, err
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewDB opens a SQLite database file and configures it for concurrent use.
func NewDB(path string) (*sql.DB, error) {
	return NewDBWithConfig(path, DefaultDBConfig())
}

// NewDBWithConfig opens a SQLite database with custom pool configuration.
func NewDBWithConfig(path string, cfg DBConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	configurePool(db, cfg)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// sqliteDSN builds a modernc.org/sqlite URI. Writers take the lock at BEGIN
// so a guarded delete cannot interleave with a concurrent insert.
func sqliteDSN(path string) string {
	params := url.Values{}
	for _, p := range sqlitePragmas {
		params.Add("_pragma", p)
	}
	params.Set("_time_format", "sqlite")
	params.Set("_txlock", "immediate")
	return "file:" + strings.TrimPrefix(path, "file:") + "?" + params.Encode()
}

// NewMySQL opens a MySQL database. parseTime is always enabled so DATETIME
// columns scan into time.Time.
func NewMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	configurePool(db, DefaultDBConfig())

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func configurePool(db *sql.DB, cfg DBConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// Migrate runs all pending database migrations for the dialect.
func Migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, dialect.migrationsDir()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
