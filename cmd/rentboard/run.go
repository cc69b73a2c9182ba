package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/aristath/rentboard/internal/config"
	"github.com/aristath/rentboard/internal/di"
	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/export"
	"github.com/aristath/rentboard/internal/modules/rules"
	"github.com/aristath/rentboard/pkg/logger"
)

// csvSource serves bookings straight from an export file
type csvSource struct {
	path string
	log  zerolog.Logger
}

func (s csvSource) List(_ context.Context) ([]domain.BookingRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening bookings export: %w", err)
	}
	defer f.Close()

	parsed, err := bookings.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	for _, lineErr := range parsed.Errors {
		s.log.Warn().Int("line", lineErr.Line).Str("error", lineErr.Err).Msg("Skipped unparsable booking row")
	}
	return parsed.Records, nil
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("loading config: %w", err)
	}
	// Keep stdout clean for the report; diagnostics go to stderr
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})
	return cfg, log, nil
}

// openService builds an analytics service over the CSV export when one is
// given, and over the configured store otherwise. The returned closer must
// be called when done.
func openService(q queryFlags) (*analytics.Service, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if q.rulesFile != "" {
		cfg.RulesFile = q.rulesFile
	}

	if q.csvPath != "" {
		r, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading rules: %w", err)
		}
		svc := analytics.NewService(r, csvSource{path: q.csvPath, log: log}, cfg.Cutoff, log)
		return svc, func() {}, nil
	}

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return container.Analytics, func() { container.Close() }, nil
}

func (q queryFlags) request() analytics.Request {
	return analytics.Request{Mode: q.mode, Year: q.year, Owner: q.owner}
}

func runReport(ctx context.Context, w io.Writer, q queryFlags) error {
	svc, closeFn, err := openService(q)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.Report(ctx, q.request())
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	printOverview(w, report.Overview)
	fmt.Fprintln(w)
	printPerformance(w, report.Performance, report.Currency)
	return nil
}

func runExport(ctx context.Context, w io.Writer, q queryFlags, out string) error {
	svc, closeFn, err := openService(q)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.Report(ctx, q.request())
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := export.Write(report, f); err != nil {
		f.Close()
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	fmt.Fprintf(w, "Wrote %s (%s %d, owner %s)\n", out, report.Overview.Mode, report.Overview.Year, report.Overview.Owner)
	return nil
}

func runImport(ctx context.Context, w io.Writer, path string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return err
	}
	defer container.Close()

	report, err := container.Importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}

	printImport(w, report)
	return nil
}

func runThresholds(w io.Writer, rulesFile string) error {
	if rulesFile == "" {
		rulesFile = os.Getenv("RENTBOARD_RULES_FILE")
	}
	r, err := rules.Load(rulesFile)
	if err != nil {
		return err
	}

	primary, secondary := r.Currencies()
	printThresholds(w, r.Thresholds(), primary, secondary)
	return nil
}
