package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	eventCacheJanitorJob *EventCacheJanitorJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(eventCache sweeper, logger *slog.Logger) *JobManager {
	return &JobManager{
		eventCacheJanitorJob: NewEventCacheJanitorJob(eventCache, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.eventCacheJanitorJob.Start(); err != nil {
		return fmt.Errorf("failed to start event cache janitor job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.eventCacheJanitorJob.Stop()
}
