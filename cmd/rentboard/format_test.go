package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/classification"
	"github.com/aristath/rentboard/internal/modules/performance"
	"github.com/aristath/rentboard/internal/modules/rules"
	testingpkg "github.com/aristath/rentboard/internal/testing"
)

type fixtureSource struct{}

func (fixtureSource) List(context.Context) ([]domain.BookingRecord, error) {
	return testingpkg.NewBookingFixtures(), nil
}

func fixtureReport(t *testing.T) *analytics.Report {
	t.Helper()
	svc := analytics.NewService(rules.Default(), fixtureSource{}, domain.YearMonth{}, zerolog.Nop())
	report, err := svc.Report(context.Background(), analytics.Request{Year: 2023})
	require.NoError(t, err)
	return report
}

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookings.csv")
	require.NoError(t, os.WriteFile(path, []byte(testingpkg.BookingsCSV), 0644))
	return path
}

func TestClassMarker(t *testing.T) {
	tests := []struct {
		class classification.Class
		want  string
	}{
		{classification.Above, "+"},
		{classification.Near, "~"},
		{classification.Below, "-"},
		{classification.NoData, " "},
	}
	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, classMarker(tt.class))
		})
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "140.80", formatCell(domain.ModeRevenue, 140.8))
	assert.Equal(t, "3", formatCell(domain.ModeOccupancy, 3))
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "-52.00%", formatPct(performance.Row{PerformancePct: -52, PerformanceDefined: true}))
	assert.Equal(t, "+12.50%", formatPct(performance.Row{PerformancePct: 12.5, PerformanceDefined: true}))
	assert.Equal(t, "n/a", formatPct(performance.Row{}))
}

func TestPrintOverview(t *testing.T) {
	report := fixtureReport(t)

	var buf bytes.Buffer
	printOverview(&buf, report.Overview)
	out := buf.String()

	assert.Contains(t, out, "Revenue 2023 (owner all)")
	assert.Contains(t, out, "2023-01")
	assert.Contains(t, out, "424.00-")
	assert.Contains(t, out, "1344.00+")
	assert.Contains(t, out, "2400.00~")
	assert.Contains(t, out, "Legend: + above (1)  ~ near (1)  - below (3)  blank no data (4)")
}

func TestPrintPerformance(t *testing.T) {
	report := fixtureReport(t)

	var buf bytes.Buffer
	printPerformance(&buf, report.Performance, report.Currency)
	out := buf.String()

	assert.Contains(t, out, "Performance 2023")
	assert.Contains(t, out, "Revenue EUR")
	assert.Contains(t, out, "Earnings MAD")
	assert.Contains(t, out, "-52.00%")
	assert.Contains(t, out, "EXCLUDED (1):")
	assert.Contains(t, out, "Palmeraie B9 A1 (1 active months)")
}

func TestPrintThresholds(t *testing.T) {
	r := rules.Default()
	primary, secondary := r.Currencies()

	var buf bytes.Buffer
	printThresholds(&buf, r.Thresholds(), primary, secondary)

	assert.Contains(t, buf.String(), "Target EUR")
	assert.Contains(t, buf.String(), "Alia 22")
}

func TestRunReport_FromCSV(t *testing.T) {
	t.Setenv("RENTBOARD_DATA_DIR", t.TempDir())

	var buf bytes.Buffer
	err := runReport(context.Background(), &buf, queryFlags{
		mode:    "Revenue",
		year:    2023,
		owner:   "all",
		csvPath: writeFixtureCSV(t),
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Revenue 2023 (owner all)")
	assert.Contains(t, buf.String(), "Performance 2023")
}

func TestRunReport_UnknownMode(t *testing.T) {
	t.Setenv("RENTBOARD_DATA_DIR", t.TempDir())

	var buf bytes.Buffer
	err := runReport(context.Background(), &buf, queryFlags{mode: "Profit", csvPath: writeFixtureCSV(t)})
	require.Error(t, err)

	var modeErr *domain.ModeError
	assert.ErrorAs(t, err, &modeErr)
}

func TestRunImportThenReportFromStore(t *testing.T) {
	t.Setenv("RENTBOARD_DATA_DIR", t.TempDir())
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runImport(ctx, &buf, writeFixtureCSV(t)))
	assert.Contains(t, buf.String(), "Imported 5 bookings")

	buf.Reset()
	require.NoError(t, runReport(ctx, &buf, queryFlags{mode: "Occupancy", year: 2023, owner: "Mounia"}))
	assert.Contains(t, buf.String(), "Occupancy 2023 (owner Mounia)")
	assert.NotContains(t, buf.String(), "Alia 22")
}

func TestRunExport(t *testing.T) {
	t.Setenv("RENTBOARD_DATA_DIR", t.TempDir())
	out := filepath.Join(t.TempDir(), "report.xlsx")

	var buf bytes.Buffer
	err := runExport(context.Background(), &buf, queryFlags{year: 2023, owner: "all", csvPath: writeFixtureCSV(t)}, out)
	require.NoError(t, err)

	assert.FileExists(t, out)
	assert.Contains(t, buf.String(), "Wrote "+out)
}
