package tasks

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	CleanupAuditEventsQueue = "cleanup_audit_events"

	// DefaultAuditRetentionDays applies when a task carries no retention.
	DefaultAuditRetentionDays = 90

	// MinAuditRetentionDays keeps at least a week of circulation history no
	// matter what a task asks for.
	MinAuditRetentionDays = 7
)

var ErrNoAuditCleaner = errors.New("audit event cleaner not configured")

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        CleanupAuditEventsQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// retentionDays applies the default and the floor to a requested retention.
func retentionDays(requested int) int {
	switch {
	case requested <= 0:
		return DefaultAuditRetentionDays
	case requested < MinAuditRetentionDays:
		return MinAuditRetentionDays
	default:
		return requested
	}
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return ErrNoAuditCleaner
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		days := retentionDays(task.RetentionDays)
		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			log.Printf("[TASK] Audit cleanup failed: %v", err)
			return err
		}

		log.Printf("[TASK] Removed %d audit events older than %d days", deleted, days)
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
