// Package audit records every employee search as a structured log row.
//
// The primary sink is the search_logs database table; file and fan-out
// loggers exist for deployments that mirror the trail to disk. Retention is
// handled by a cron-scheduled sweeper that deletes or archives rows older
// than the configured age.
package audit
