package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rentboard/internal/config"
	"github.com/aristath/rentboard/internal/database"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/rules"
	"github.com/aristath/rentboard/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Load business rules
// 2. Open and migrate the booking store
// 3. Create repositories and services
// 4. Register jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	r, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rules: %w", err)
	}

	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileCache, // rebuilt from the bookings export
		Name:    "bookings",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize bookings database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate bookings database: %w", err)
	}

	repo := bookings.NewRepository(db, log)
	container := &Container{
		BookingsDB: db,
		Rules:      r,
		Repository: repo,
		Importer:   bookings.NewImporter(repo, log),
		Analytics:  analytics.NewService(r, repo, cfg.Cutoff, log),
		Scheduler:  scheduler.New(log),
	}

	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().
		Int("properties", len(r.Properties())).
		Str("rules_file", cfg.RulesFile).
		Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
