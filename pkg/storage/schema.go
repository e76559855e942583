package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// postgresSchema creates the directory tables with PostgreSQL types.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(50),
		department VARCHAR(100),
		position VARCHAR(100),
		location VARCHAR(100),
		hire_date DATE,
		salary DOUBLE PRECISION,
		status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
		organization_id BIGINT NOT NULL REFERENCES organizations(id),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_organization_id ON employees(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_location ON employees(location)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status)`,
	`CREATE TABLE IF NOT EXISTS organization_column_configs (
		id BIGSERIAL PRIMARY KEY,
		organization_id BIGINT NOT NULL REFERENCES organizations(id),
		column_name VARCHAR(50) NOT NULL,
		display_order INT NOT NULL DEFAULT 0,
		is_visible BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (organization_id, column_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_column_configs_organization_id
		ON organization_column_configs(organization_id)`,
}

// sqliteSchema mirrors the PostgreSQL schema with SQLite types. SQLite has
// no BIGSERIAL; INTEGER PRIMARY KEY rows autoincrement.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		department TEXT,
		position TEXT,
		location TEXT,
		hire_date DATE,
		salary REAL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_organization_id ON employees(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_location ON employees(location)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status)`,
	`CREATE TABLE IF NOT EXISTS organization_column_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		column_name TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_visible BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (organization_id, column_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_column_configs_organization_id
		ON organization_column_configs(organization_id)`,
}

// EnsureSchema creates the directory tables and indexes when missing.
// driver selects the DDL dialect; use the DriverPostgres and DriverSQLite
// constants.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	var statements []string
	switch driver {
	case DriverPostgres:
		statements = postgresSchema
	case DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("unsupported schema dialect: %s", driver)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	return nil
}
