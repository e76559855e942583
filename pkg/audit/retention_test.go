package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingArchiver struct {
	events []*Event
	err    error
}

func (a *recordingArchiver) Archive(ctx context.Context, events []*Event) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, events...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepDeletesExpiredRows(t *testing.T) {
	logger, mock := setupMockDB(t)

	sweeper, err := NewSweeper(logger, nil, RetentionPolicy{
		MaxAge: 30 * 24 * time.Hour,
	}, discardLogger())
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM search_logs WHERE created_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 17))

	require.NoError(t, sweeper.Sweep(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepArchivesBeforeDelete(t *testing.T) {
	logger, mock := setupMockDB(t)
	archiver := &recordingArchiver{}

	sweeper, err := NewSweeper(logger, archiver, RetentionPolicy{
		MaxAge:  30 * 24 * time.Hour,
		Archive: true,
	}, discardLogger())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "organization_id", "search_filters", "results_count",
		"client_ip", "user_agent", "response_time_ms", "created_at",
	}).AddRow(1, 7, nil, 3, nil, nil, nil, time.Now().Add(-60*24*time.Hour))

	mock.ExpectQuery("SELECT id, organization_id, search_filters").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectExec("DELETE FROM search_logs WHERE created_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sweeper.Sweep(context.Background()))
	require.Len(t, archiver.events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepAbortsWhenArchiveFails(t *testing.T) {
	logger, mock := setupMockDB(t)
	archiver := &recordingArchiver{err: errors.New("bucket unreachable")}

	sweeper, err := NewSweeper(logger, archiver, RetentionPolicy{
		MaxAge:  30 * 24 * time.Hour,
		Archive: true,
	}, discardLogger())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, organization_id, search_filters").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "search_filters", "results_count",
			"client_ip", "user_agent", "response_time_ms", "created_at",
		}).AddRow(1, 7, nil, 3, nil, nil, nil, time.Now().Add(-60*24*time.Hour)))

	err = sweeper.Sweep(context.Background())
	assert.ErrorContains(t, err, "bucket unreachable")

	// No DELETE was issued, so nothing is lost.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSweeperValidation(t *testing.T) {
	logger, _ := setupMockDB(t)

	_, err := NewSweeper(logger, nil, RetentionPolicy{}, discardLogger())
	assert.ErrorContains(t, err, "max age must be positive")

	_, err = NewSweeper(logger, nil, RetentionPolicy{
		MaxAge:  time.Hour,
		Archive: true,
	}, discardLogger())
	assert.ErrorContains(t, err, "no archiver configured")
}
