package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxConns = 10
	connMaxLifetime = 30 * time.Minute

	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// Config captures the settings required to open the relational store.
type Config struct {
	// URL is a postgres:// connection string. file: and sqlite: URLs open a
	// local SQLite database instead, which is handy for development.
	URL      string
	MaxConns int
	Timeout  time.Duration
}

// Connect opens an instrumented connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}

	driver, dsn := driverFor(cfg.URL)
	system := semconv.DBSystemPostgreSQL
	if driver == driverSQLite {
		system = semconv.DBSystemSqlite
		// SQLite serialises writers; one connection keeps FK pragmas and
		// transactions predictable.
		maxConns = 1
	}

	sqlDB, err := otelsql.Open(driver, dsn,
		otelsql.WithAttributes(system),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableQuery: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db := sqlx.NewDb(sqlDB, driver)
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := Ping(ctx, db, timeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks that the store answers within timeout. Used by the readiness probe.
func Ping(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%s ping: %w", db.DriverName(), err)
	}
	return nil
}

func driverFor(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return driverSQLite, withForeignKeys("file:" + strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "sqlite:"):
		return driverSQLite, withForeignKeys("file:" + strings.TrimPrefix(url, "sqlite:"))
	case strings.HasPrefix(url, "file:"):
		return driverSQLite, withForeignKeys(url)
	default:
		return driverPostgres, url
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
