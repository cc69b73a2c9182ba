package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rentboard/internal/modules/bookings"
)

// FileImporter imports a bookings export from disk
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (*bookings.ImportReport, error)
}

// RefreshJob re-imports the configured bookings CSV, replacing the stored batch
type RefreshJob struct {
	importer FileImporter
	path     string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewRefreshJob creates a job importing path on every run
func NewRefreshJob(importer FileImporter, path string, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		importer: importer,
		path:     path,
		timeout:  5 * time.Minute,
		log:      log.With().Str("job", "refresh_bookings").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_bookings"
}

// Run imports the CSV file
func (j *RefreshJob) Run() error {
	if j.path == "" {
		return fmt.Errorf("refresh_bookings: no bookings file configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.importer.ImportFile(ctx, j.path)
	if err != nil {
		return fmt.Errorf("refresh_bookings: %w", err)
	}

	j.log.Info().
		Str("path", j.path).
		Str("batch_id", report.BatchID).
		Int("records", report.RecordCount).
		Int("errors", report.ErrorCount).
		Msg("Bookings refreshed")

	return nil
}
