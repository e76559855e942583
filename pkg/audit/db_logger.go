package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBLogger writes search logs to the search_logs table.
type DBLogger struct {
	db *sql.DB
}

var searchLogsDDL = map[string]string{
	"postgres": `
	CREATE TABLE IF NOT EXISTS search_logs (
		id BIGSERIAL PRIMARY KEY,
		organization_id BIGINT NOT NULL,
		search_filters TEXT,
		results_count INTEGER NOT NULL DEFAULT 0,
		client_ip VARCHAR(45),
		user_agent VARCHAR(500),
		response_time_ms DOUBLE PRECISION,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_search_logs_organization_id ON search_logs(organization_id);
	CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs(created_at DESC);
	`,
	"sqlite3": `
	CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id INTEGER NOT NULL,
		search_filters TEXT,
		results_count INTEGER NOT NULL DEFAULT 0,
		client_ip TEXT,
		user_agent TEXT,
		response_time_ms REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_search_logs_organization_id ON search_logs(organization_id);
	CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs(created_at DESC);
	`,
}

// NewDBLogger creates a database-backed search logger and ensures the
// search_logs table exists. driver is the database/sql driver name,
// "postgres" or "sqlite3".
func NewDBLogger(db *sql.DB, driver string) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	ddl, ok := searchLogsDDL[driver]
	if !ok {
		ddl = searchLogsDDL["postgres"]
	}

	logger := &DBLogger{db: db}

	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("failed to ensure search_logs table: %w", err)
	}

	return logger, nil
}

// Log inserts one search event and fills in its assigned id.
func (l *DBLogger) Log(ctx context.Context, event *Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO search_logs (
			organization_id, search_filters, results_count,
			client_ip, user_agent, response_time_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`

	err := l.db.QueryRowContext(ctx, query,
		event.OrganizationID, event.Filters, event.ResultCount,
		event.ClientIP, event.UserAgent, event.ResponseTimeMS, event.CreatedAt,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}

	return nil
}

// Search returns search-log rows matching the filter, newest first.
func (l *DBLogger) Search(ctx context.Context, filter Filter) ([]*Event, error) {
	query := `
		SELECT id, organization_id, search_filters, results_count,
			client_ip, user_agent, response_time_ms, created_at
		FROM search_logs
		WHERE 1=1
	`

	args := []interface{}{}
	argCount := 1

	if filter.OrganizationID != nil {
		query += fmt.Sprintf(" AND organization_id = $%d", argCount)
		args = append(args, *filter.OrganizationID)
		argCount++
	}

	if filter.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *filter.Since)
		argCount++
	}

	if filter.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argCount)
		args = append(args, *filter.Until)
		argCount++
	}

	if filter.ClientIP != "" {
		query += fmt.Sprintf(" AND client_ip = $%d", argCount)
		args = append(args, filter.ClientIP)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search logs: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		event := &Event{}
		var filters, clientIP, userAgent sql.NullString
		var responseTime sql.NullFloat64

		err := rows.Scan(
			&event.ID, &event.OrganizationID, &filters, &event.ResultCount,
			&clientIP, &userAgent, &responseTime, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search log: %w", err)
		}

		event.Filters = filters.String
		event.ClientIP = clientIP.String
		event.UserAgent = userAgent.String
		event.ResponseTimeMS = responseTime.Float64

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search logs: %w", err)
	}

	return events, nil
}

// Stats aggregates the search-log table over an optional time range.
func (l *DBLogger) Stats(ctx context.Context, since, until *time.Time) (*Stats, error) {
	stats := &Stats{
		SearchesByOrg: make(map[int64]int64),
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if since != nil {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *since)
		argCount++
	}

	if until != nil {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argCount)
		args = append(args, *until)
	}

	err := l.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE results_count = 0),
			COUNT(DISTINCT client_ip) FILTER (WHERE client_ip IS NOT NULL),
			COALESCE(AVG(response_time_ms), 0)
		FROM search_logs %s`, whereClause), args...).
		Scan(&stats.TotalSearches, &stats.EmptySearches, &stats.UniqueIPs, &stats.AvgResponseTimeMS)
	if err != nil {
		return nil, fmt.Errorf("failed to get search stats: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT organization_id, COUNT(*) FROM search_logs %s GROUP BY organization_id", whereClause), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get searches by org: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orgID, count int64
		if err := rows.Scan(&orgID, &count); err != nil {
			return nil, err
		}
		stats.SearchesByOrg[orgID] = count
	}

	return stats, rows.Err()
}

// Cleanup deletes rows created before the cutoff and reports how many were
// removed.
func (l *DBLogger) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := l.db.ExecContext(ctx,
		"DELETE FROM search_logs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up search logs: %w", err)
	}
	return result.RowsAffected()
}

// Close is a no-op; the database connection is shared.
func (l *DBLogger) Close() error {
	return nil
}
