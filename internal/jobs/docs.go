// Package jobs provides scheduled background tasks for the workshop backend.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. EventCacheJanitorJob - Periodically sweeps expired entries out of the
// per-order event-trail cache. Reads already treat expired entries as
// absent; the janitor only reclaims the memory behind them.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(eventCache, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
package jobs
