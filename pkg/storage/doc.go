// Package storage owns database connectivity and schema bootstrap for the
// directory service.
//
// Connection URLs select the driver by scheme: postgres:// and postgresql://
// open lib/pq connections, sqlite:// opens an embedded go-sqlite3 database
// for development and tests. Production deployments run PostgreSQL; the
// ConnectionManager adds read replica round-robin on top of it.
//
// EnsureSchema creates the organizations, employees and
// organization_column_configs tables with their indexes if they do not
// exist. The search audit table is owned by pkg/audit's DB logger, which
// bootstraps it the same way.
package storage
