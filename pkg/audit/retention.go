package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Archiver receives expired events before they are deleted.
type Archiver interface {
	Archive(ctx context.Context, events []*Event) error
}

// RetentionPolicy controls how long search logs are kept.
type RetentionPolicy struct {
	// MaxAge is the age past which rows are swept.
	MaxAge time.Duration
	// Schedule is a cron expression; defaults to daily at 03:00.
	Schedule string
	// Archive, when true, uploads expired rows before deleting them. A
	// failed archive aborts the sweep so no rows are lost.
	Archive bool
}

// DefaultRetentionPolicy keeps 90 days of search logs.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MaxAge:   90 * 24 * time.Hour,
		Schedule: "0 3 * * *",
	}
}

// Sweeper deletes or archives search logs past the retention age on a cron
// schedule.
type Sweeper struct {
	logs     *DBLogger
	archiver Archiver
	policy   RetentionPolicy
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewSweeper creates a retention sweeper. archiver may be nil when the
// policy does not archive.
func NewSweeper(logs *DBLogger, archiver Archiver, policy RetentionPolicy, logger *slog.Logger) (*Sweeper, error) {
	if policy.MaxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive")
	}
	if policy.Archive && archiver == nil {
		return nil, fmt.Errorf("archive enabled but no archiver configured")
	}
	if policy.Schedule == "" {
		policy.Schedule = DefaultRetentionPolicy().Schedule
	}

	return &Sweeper{
		logs:     logs,
		archiver: archiver,
		policy:   policy,
		logger:   logger,
		cron:     cron.New(),
	}, nil
}

// Start schedules the sweep and begins the cron loop.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.policy.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("search log retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one retention pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.policy.MaxAge)

	if s.policy.Archive {
		expired, err := s.logs.Search(ctx, Filter{Until: &cutoff})
		if err != nil {
			return fmt.Errorf("failed to load expired search logs: %w", err)
		}
		if err := s.archiver.Archive(ctx, expired); err != nil {
			return fmt.Errorf("failed to archive expired search logs: %w", err)
		}
	}

	deleted, err := s.logs.Cleanup(ctx, cutoff)
	if err != nil {
		return err
	}

	s.logger.Info("search log retention sweep completed",
		"deleted", deleted,
		"cutoff", cutoff.Format(time.RFC3339),
	)
	return nil
}
