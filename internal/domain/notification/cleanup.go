package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupService handles retention of notification data
type CleanupService struct {
	repo *Repository
	log  logrus.FieldLogger
}

func NewCleanupService(repo *Repository, log logrus.FieldLogger) *CleanupService {
	return &CleanupService{repo: repo, log: log}
}

// CleanupReport summarizes one cleanup run.
type CleanupReport struct {
	EmailLogsDeleted int64  `json:"email_logs_deleted"`
	Duration         string `json:"duration"`
}

// CleanupOldEmailLogs removes delivery log entries older than daysToKeep days
func (c *CleanupService) CleanupOldEmailLogs(ctx context.Context, daysToKeep int) (int64, error) {
	startTime := time.Now()

	deleted, err := c.repo.DeleteOlderThan(ctx, time.Duration(daysToKeep*24)*time.Hour)
	if err != nil {
		c.log.WithError(err).Error("email log cleanup failed")
		return 0, err
	}

	c.log.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(startTime).String(),
	}).Info("email log cleanup completed")
	return deleted, nil
}

// RunScheduledCleanup runs all cleanup tasks
func (c *CleanupService) RunScheduledCleanup(ctx context.Context, config CleanupConfig) (CleanupReport, error) {
	startTime := time.Now()

	deleted, err := c.CleanupOldEmailLogs(ctx, config.EmailLogRetentionDays)
	report := CleanupReport{EmailLogsDeleted: deleted, Duration: time.Since(startTime).String()}
	return report, err
}

// CleanupConfig holds configuration for cleanup tasks
type CleanupConfig struct {
	EmailLogRetentionDays  int           // default: 30
	CleanupInterval        time.Duration // default: 24h
	EnableAutomaticCleanup bool
}

func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		EmailLogRetentionDays:  30,
		CleanupInterval:        24 * time.Hour,
		EnableAutomaticCleanup: true,
	}
}

// ScheduleCleanup starts a background goroutine for periodic cleanup.
// Closing the returned channel or cancelling ctx stops it.
func (c *CleanupService) ScheduleCleanup(ctx context.Context, config CleanupConfig) chan struct{} {
	if !config.EnableAutomaticCleanup {
		c.log.Info("automatic cleanup is disabled")
		return nil
	}

	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(config.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := c.RunScheduledCleanup(ctx, config); err != nil {
					c.log.WithError(err).Warn("scheduled cleanup error")
				}
			case <-stopCh:
				c.log.Info("scheduled cleanup stopped")
				return
			case <-ctx.Done():
				c.log.Info("scheduled cleanup stopped (context done)")
				return
			}
		}
	}()

	c.log.WithField("interval", config.CleanupInterval.String()).Info("scheduled cleanup started")
	return stopCh
}
