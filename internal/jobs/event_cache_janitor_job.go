package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// sweeper is the slice of the event cache the janitor needs.
type sweeper interface {
	Sweep() int
	Len() int
}

// EventCacheJanitorJob reclaims expired event-trail cache entries on a
// schedule. Expired entries already read as absent, so the sweep frequency
// only affects memory, never correctness.
type EventCacheJanitorJob struct {
	cache  sweeper
	cron   *cron.Cron
	logger *slog.Logger
}

// NewEventCacheJanitorJob creates a janitor sweeping every minute.
func NewEventCacheJanitorJob(cache sweeper, logger *slog.Logger) *EventCacheJanitorJob {
	return &EventCacheJanitorJob{
		cache:  cache,
		cron:   cron.New(),
		logger: logger.With("component", "event_cache_janitor_job"),
	}
}

// Start begins the sweep schedule.
func (j *EventCacheJanitorJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()

		if removed := j.cache.Sweep(); removed > 0 {
			j.logger.InfoContext(ctx, "Swept expired event cache entries",
				"removed", removed, "remaining", j.cache.Len())
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Event cache janitor started (sweeping every minute)")
	return nil
}

// Stop stops the sweep schedule.
func (j *EventCacheJanitorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Event cache janitor stopped")
}
