package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"
)

// AuditCleanupQueue is the backlite queue name for audit retention runs.
const AuditCleanupQueue = "cleanup_audit_events"

const defaultRetentionDays = 90

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        AuditCleanupQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Retention returns the task's retention window, defaulting to 90 days.
func (t CleanupAuditEventsTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// CleanupAuditEventsProcessor returns the processor for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		deleted, err := cleaner.DeleteOldEvents(task.Retention())
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		log.WithFields(log.Fields{
			"deleted":   deleted,
			"retention": task.Retention().String(),
		}).Info("Cleaned up audit events")
		return nil
	}
}

// NewCleanupAuditEventsQueue creates the backlite queue for audit cleanup.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}

// EnqueueAuditCleanup queues a cleanup run.
func (c *Client) EnqueueAuditCleanup(retentionDays int) error {
	_, err := c.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Save()
	return err
}

// InlineCleanup runs audit cleanups synchronously. It stands in for the
// queue when background tasks are disabled.
type InlineCleanup struct {
	Cleaner AuditEventCleaner
}

func (i InlineCleanup) EnqueueAuditCleanup(retentionDays int) error {
	return CleanupAuditEventsProcessor(i.Cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: retentionDays})
}
