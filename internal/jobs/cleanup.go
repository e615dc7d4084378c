package jobs

import (
	"log/slog"
	"time"

	"linkpulse/internal/clicks"
	"linkpulse/internal/config"
	"linkpulse/internal/database"
)

const cleanupBatchSize = 1000

// CleanupJob deletes clicks older than the retention period. Aggregate
// counters on links are unaffected; only the per-click rows go.
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run removes clicks older than the retention period, in batches so the
// database is not locked for long stretches.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.ClickRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := clicks.DeleteOlderThan(j.dbManager, j.logger, cutoff, cleanupBatchSize)
	if err != nil {
		j.logger.Error("Failed to delete old clicks",
			slog.Any("error", err),
			slog.Int("retention_days", retentionDays))
		return err
	}

	if deleted > 0 {
		j.logger.Info("Cleaned up old clicks",
			slog.Int64("deleted_count", deleted),
			slog.Int("retention_days", retentionDays))
	}

	return nil
}
