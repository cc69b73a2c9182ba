package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rentboard/internal/config"
	"github.com/aristath/rentboard/internal/scheduler"
)

const checkDatabaseSchedule = "@daily"

// RegisterJobs creates the background jobs and registers the scheduled ones
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		CheckDatabase: scheduler.NewCheckDatabaseJob(container.BookingsDB, log),
	}

	if err := container.Scheduler.AddJob(checkDatabaseSchedule, jobs.CheckDatabase); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", jobs.CheckDatabase.Name(), err)
	}

	if cfg.BookingsCSV != "" {
		jobs.Refresh = scheduler.NewRefreshJob(container.Importer, cfg.BookingsCSV, log)

		if cfg.RefreshSchedule != "" {
			if err := container.Scheduler.AddJob(cfg.RefreshSchedule, jobs.Refresh); err != nil {
				return nil, fmt.Errorf("failed to register %s: %w", jobs.Refresh.Name(), err)
			}
		}
	}

	return jobs, nil
}
