package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for dev and tests
)

// PoolConfig holds connection pool settings applied to every opened database.
type PoolConfig struct {
	MaxConns    int
	MinConns    int
	Timeout     time.Duration
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPoolConfig returns pool settings suitable for a single service
// instance.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:    25,
		MinConns:    5,
		Timeout:     10 * time.Second,
		MaxLifetime: 30 * time.Minute,
		MaxIdleTime: 5 * time.Minute,
	}
}

// DriverFor reports the database/sql driver name and DSN for a connection
// URL. Supported schemes are postgres://, postgresql:// and sqlite://.
func DriverFor(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url, nil
	case strings.HasPrefix(url, "sqlite://"):
		// sqlite://roster.db and sqlite:///var/lib/roster.db both work;
		// the path is everything after the scheme.
		return "sqlite3", strings.TrimPrefix(url, "sqlite://"), nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme: %s", url)
	}
}

// Open opens a database connection for the given URL, applies the pool
// settings and verifies the connection with a ping.
func Open(url string, pool PoolConfig) (*sql.DB, error) {
	driver, dsn, err := DriverFor(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite serializes writers; a wide pool only produces lock errors.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(pool.MaxConns)
		db.SetMaxIdleConns(pool.MinConns)
		db.SetConnMaxLifetime(pool.MaxLifetime)
		db.SetConnMaxIdleTime(pool.MaxIdleTime)
	}

	timeout := pool.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// FixedSource pins a single handle behind the replica-resolver interface the
// read services accept. Production wiring passes the ConnectionManager
// instead so reads follow replica rotation.
type FixedSource struct {
	db     *sql.DB
	driver string
}

// Fixed wraps a standalone handle and its driver name.
func Fixed(db *sql.DB, driver string) *FixedSource {
	return &FixedSource{db: db, driver: driver}
}

func (f *FixedSource) Replica() *sql.DB { return f.db }

func (f *FixedSource) Driver() string { return f.driver }
