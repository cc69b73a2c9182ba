package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/rules"
	testingpkg "github.com/aristath/rentboard/internal/testing"
)

type fixtureSource struct {
	records []domain.BookingRecord
}

func (s fixtureSource) List(ctx context.Context) ([]domain.BookingRecord, error) {
	return s.records, nil
}

func buildReport(t *testing.T) *analytics.Report {
	t.Helper()

	records := append(testingpkg.NewBookingFixtures(),
		testingpkg.Booking("HM900", "Nowhere 1", "Mohamed", testingpkg.Date(2023, 1, 5), testingpkg.Date(2023, 1, 7), 200))
	svc := analytics.NewService(rules.Default(), fixtureSource{records: records}, domain.YearMonth{},
		zerolog.New(nil).Level(zerolog.Disabled))

	report, err := svc.Report(context.Background(), analytics.Request{Mode: "Revenue", Year: 2023})
	require.NoError(t, err)
	return report
}

func TestWorkbook_Sheets(t *testing.T) {
	f, err := Workbook(buildReport(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPivot, SheetSummary, SheetRejected}, f.GetSheetList())
}

func TestWorkbook_PivotSheet(t *testing.T) {
	f, err := Workbook(buildReport(t))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(SheetPivot, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Revenue 2023 (all)", title)

	rows, err := f.GetRows(SheetPivot)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"Property", "2023-01", "2023-02", "2023-03", "Total"}, rows[1])
	assert.Equal(t, "Alia 22", rows[2][0])
	assert.Equal(t, "Alia 36", rows[3][0])
	assert.Equal(t, "Palmeraie B9 A1", rows[4][0])

	// Alia 22: Jan and Feb are BELOW, Mar is NO_DATA. Alia 36 Mar is ABOVE.
	janStyle, err := f.GetCellStyle(SheetPivot, "B3")
	require.NoError(t, err)
	febStyle, err := f.GetCellStyle(SheetPivot, "C3")
	require.NoError(t, err)
	marStyle, err := f.GetCellStyle(SheetPivot, "D3")
	require.NoError(t, err)
	aboveStyle, err := f.GetCellStyle(SheetPivot, "D4")
	require.NoError(t, err)

	assert.Equal(t, janStyle, febStyle)
	assert.NotEqual(t, janStyle, marStyle)
	assert.NotEqual(t, janStyle, aboveStyle)
	assert.NotEqual(t, marStyle, aboveStyle)
}

func TestWorkbook_SummarySheet(t *testing.T) {
	f, err := Workbook(buildReport(t))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)

	assert.Equal(t, "Real earnings (MAD)", rows[0][5])
	assert.Equal(t, "Alia 22", rows[1][0])
	assert.Equal(t, "Alia 36", rows[2][0])

	var excludedAt int
	for i, row := range rows {
		if len(row) > 0 && row[0] == "Excluded by policy" {
			excludedAt = i
		}
	}
	require.NotZero(t, excludedAt)
	assert.Equal(t, "Palmeraie B9 A1", rows[excludedAt+1][0])
}

func TestWorkbook_RejectedSheet(t *testing.T) {
	f, err := Workbook(buildReport(t))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetRejected)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "HM900", rows[1][0])
	assert.Equal(t, "Nowhere 1", rows[1][1])
	assert.Contains(t, rows[1][2], "unknown property")
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(buildReport(t), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), SheetSummary)
}

func TestWorkbook_EmptyReport(t *testing.T) {
	_, err := Workbook(nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))
}
