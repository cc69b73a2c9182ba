// Package di wires the application's dependencies.
package di

import (
	"github.com/aristath/rentboard/internal/database"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/rules"
	"github.com/aristath/rentboard/internal/scheduler"
)

// Container holds every long-lived dependency of the application
type Container struct {
	BookingsDB *database.DB
	Rules      *rules.Rules
	Repository *bookings.Repository
	Importer   *bookings.Importer
	Analytics  *analytics.Service
	Scheduler  *scheduler.Scheduler
}

// JobInstances holds the job instances for manual triggering
type JobInstances struct {
	Refresh       *scheduler.RefreshJob // nil when no bookings file is configured
	CheckDatabase *scheduler.CheckDatabaseJob
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.BookingsDB == nil {
		return nil
	}
	return c.BookingsDB.Close()
}
