package bookings

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Importer loads bookings exports into the repository
type Importer struct {
	repo *Repository
	log  zerolog.Logger
}

// NewImporter creates an importer writing to repo
func NewImporter(repo *Repository, log zerolog.Logger) *Importer {
	return &Importer{
		repo: repo,
		log:  log.With().Str("service", "bookings_import").Logger(),
	}
}

// ImportReport is the outcome of an import
type ImportReport struct {
	*ImportResult
	LineErrors []LineError `json:"line_errors,omitempty"`
}

// ImportReader parses a CSV export from r and replaces the stored bookings
func (i *Importer) ImportReader(ctx context.Context, source string, r io.Reader) (*ImportReport, error) {
	parsed, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	for _, lineErr := range parsed.Errors {
		i.log.Warn().Int("line", lineErr.Line).Str("source", source).Str("error", lineErr.Err).Msg("Skipped unparsable booking row")
	}

	result, err := i.repo.ReplaceAll(ctx, source, parsed.Records, len(parsed.Errors))
	if err != nil {
		return nil, err
	}

	return &ImportReport{ImportResult: result, LineErrors: parsed.Errors}, nil
}

// ImportFile imports the CSV file at path
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bookings file: %w", err)
	}
	defer f.Close()

	return i.ImportReader(ctx, path, f)
}
