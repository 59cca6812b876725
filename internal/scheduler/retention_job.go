package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// RunPurger removes stored filtration runs older than a cutoff.
type RunPurger interface {
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

// RetentionJob purges stored filtration runs past the retention window.
type RetentionJob struct {
	purger    RunPurger
	retention time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates a retention job keeping runs for the given number
// of days.
func NewRetentionJob(purger RunPurger, retentionDays int, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log.With().Str("job", "run_retention").Logger(),
	}
}

// Name implements Job.
func (j *RetentionJob) Name() string { return "run_retention" }

// Run implements Job.
func (j *RetentionJob) Run() error {
	cutoff := time.Now().Add(-j.retention)
	purged, err := j.purger.PurgeOlderThan(cutoff)
	if err != nil {
		return err
	}
	if purged > 0 {
		j.log.Info().Int64("purged", purged).Msg("Retention purge complete")
	}
	return nil
}
