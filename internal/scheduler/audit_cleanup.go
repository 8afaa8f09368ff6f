package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/papersbook/storefront/internal/tasks"
)

// auditCleanupSchedule enqueues the cleanup task nightly, off-peak.
const auditCleanupSchedule = "0 3 * * *"

// AuditCleanupJob enqueues a cleanup task for settlement audit events on
// a nightly schedule. The task queue does the actual deletion so retries
// come for free.
type AuditCleanupJob struct {
	taskClient    *tasks.Client
	retentionDays int
	cron          *cron.Cron
}

// NewAuditCleanupJob creates a nightly audit cleanup job.
func NewAuditCleanupJob(taskClient *tasks.Client, retentionDays int) *AuditCleanupJob {
	return &AuditCleanupJob{
		taskClient:    taskClient,
		retentionDays: retentionDays,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the nightly cleanup.
func (j *AuditCleanupJob) Start() error {
	_, err := j.cron.AddFunc(auditCleanupSchedule, func() {
		task := tasks.CleanupAuditEventsTask{RetentionDays: j.retentionDays}
		if _, err := j.taskClient.Add(task).Save(); err != nil {
			log.Printf("Audit cleanup: failed to enqueue task: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule audit cleanup: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for an in-flight enqueue.
func (j *AuditCleanupJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
