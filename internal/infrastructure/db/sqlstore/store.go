// Package sqlstore is the relational backing store for principals and
// addresses. It speaks PostgreSQL through pgx and SQLite through the pure-Go
// modernc driver, and bootstraps its schema from embedded goose migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultTimeout = 5 * time.Second
	pgUniqueCode   = "23505"
)

//go:embed migrations
var migrations embed.FS

// Config captures the settings for opening a relational store.
type Config struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

// Store owns the *sql.DB and vends repositories bound to it.
type Store struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	log     zerolog.Logger
}

// Open connects, verifies connectivity with a ping and applies pending
// migrations. A default timeout is applied when none is provided.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	var driverName, dialect string
	switch cfg.Driver {
	case DriverSQLite:
		driverName, dialect = "sqlite", "sqlite3"
	case DriverPostgres:
		driverName, dialect = "pgx", "postgres"
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore open: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver, timeout: timeout, log: log}

	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps
		// ":memory:" databases alive across calls.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore ping: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		for _, pragma := range []string{
			"PRAGMA foreign_keys = ON;",
			"PRAGMA busy_timeout = 5000;",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("sqlstore pragma: %w", err)
			}
		}
	}

	if err := s.migrate(ctx, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context, dialect string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: s.log})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("sqlstore migrate: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations/"+s.driver); err != nil {
		return fmt.Errorf("sqlstore migrate: %w", err)
	}
	return nil
}

// Users returns the credential store backed by this database.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db, timeout: s.timeout}
}

// Addresses returns the address repository backed by this database.
func (s *Store) Addresses() *AddressRepository {
	return &AddressRepository{db: s.db, timeout: s.timeout}
}

// Ping is used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// isUniqueViolation recognises UNIQUE constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueCode
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// gooseLogger routes migration output through zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}
