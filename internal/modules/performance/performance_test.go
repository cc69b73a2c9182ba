package performance

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/pivot"
	"github.com/aristath/rentboard/internal/modules/rules"
)

func ym(year int, month time.Month) domain.YearMonth {
	return domain.YearMonth{Year: year, Month: month}
}

func revenueTable() *pivot.Table {
	return &pivot.Table{
		Mode:       domain.ModeRevenue,
		Properties: []string{"Alia 22", "Menara 12", "Oumnia A2 17"},
		Months: []domain.YearMonth{
			ym(2022, time.December),
			ym(2023, time.January), ym(2023, time.February), ym(2023, time.March),
		},
		Values: [][]float64{
			{500, 700, 0, 900},
			{0, 0, 0, 0},
			{1000, 2000, 1500, 0},
		},
	}
}

func TestWindowForYear(t *testing.T) {
	tests := []struct {
		name   string
		year   int
		cutoff domain.YearMonth
		want   Window
		months int
	}{
		{"no cutoff", 2023, domain.YearMonth{}, Window{ym(2023, 1), ym(2024, 1)}, 12},
		{"cutoff inside year", 2023, ym(2023, time.October), Window{ym(2023, 1), ym(2023, 10)}, 9},
		{"cutoff after year", 2023, ym(2025, time.March), Window{ym(2023, 1), ym(2024, 1)}, 12},
		{"cutoff before year", 2024, ym(2023, time.June), Window{ym(2024, 1), ym(2024, 1)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WindowForYear(tt.year, tt.cutoff)
			assert.Equal(t, tt.want, w)
			assert.Equal(t, tt.months, w.Months())
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := WindowForYear(2023, ym(2023, time.October))

	assert.True(t, w.Contains(ym(2023, time.January)))
	assert.True(t, w.Contains(ym(2023, time.September)))
	assert.False(t, w.Contains(ym(2023, time.October)))
	assert.False(t, w.Contains(ym(2022, time.December)))
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(revenueTable(), rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	require.NoError(t, err)

	assert.Equal(t, 2023, summary.Year)

	alia, ok := summary.Row("Alia 22")
	require.True(t, ok)
	assert.Equal(t, 2, alia.MonthsActive)
	assert.InDelta(t, 1600, alia.TotalRevenue, 1e-9)
	assert.InDelta(t, 1300, alia.TotalThreshold, 1e-9)
	assert.InDelta(t, 300, alia.RealEarnings, 1e-9)
	assert.InDelta(t, 300.0/1300.0*100, alia.PerformancePct, 1e-9)
	assert.True(t, alia.PerformanceDefined)
}

func TestSummarize_ZeroActiveMonths(t *testing.T) {
	summary, err := Summarize(revenueTable(), rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	require.NoError(t, err)

	menara, ok := summary.Row("Menara 12")
	require.True(t, ok)
	assert.Equal(t, 0, menara.MonthsActive)
	assert.Zero(t, menara.TotalThreshold)
	assert.Zero(t, menara.PerformancePct)
	assert.False(t, math.IsNaN(menara.PerformancePct))
	assert.False(t, menara.PerformanceDefined)
}

func TestSummarize_ExcludedProperty(t *testing.T) {
	summary, err := Summarize(revenueTable(), rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	require.NoError(t, err)

	_, ok := summary.Row("Oumnia A2 17")
	assert.False(t, ok, "excluded property must not appear in the summary rows")
	assert.Equal(t, []Audit{{PropertyCode: "Oumnia A2 17", MonthsActive: 2}}, summary.Excluded)
	assert.Len(t, summary.Rows, 2)
}

func TestSummarize_CutoffDropsIncompleteMonths(t *testing.T) {
	summary, err := Summarize(revenueTable(), rules.Default(), WindowForYear(2023, ym(2023, time.March)))
	require.NoError(t, err)

	alia, ok := summary.Row("Alia 22")
	require.True(t, ok)
	assert.Equal(t, 1, alia.MonthsActive)
	assert.InDelta(t, 700, alia.TotalRevenue, 1e-9)
	assert.InDelta(t, 50.0/650.0*100, alia.PerformancePct, 1e-9)
}

func TestSummarize_CustomExclusions(t *testing.T) {
	cfg := rules.DefaultConfig()
	cfg.SummaryExclusions = nil
	r, err := rules.New(cfg)
	require.NoError(t, err)

	summary, err := Summarize(revenueTable(), r, WindowForYear(2023, domain.YearMonth{}))
	require.NoError(t, err)

	oumnia, ok := summary.Row("Oumnia A2 17")
	require.True(t, ok)
	assert.Equal(t, 2, oumnia.MonthsActive)
	assert.InDelta(t, 3500-3600, oumnia.RealEarnings, 1e-9)
	assert.Empty(t, summary.Excluded)
}

func TestSummarize_Errors(t *testing.T) {
	occupancy := revenueTable()
	occupancy.Mode = domain.ModeOccupancy
	_, err := Summarize(occupancy, rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedMode))

	_, err = Summarize(nil, rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))

	unknown := revenueTable()
	unknown.Properties[1] = "Nowhere 1"
	_, err = Summarize(unknown, rules.Default(), WindowForYear(2023, domain.YearMonth{}))
	assert.True(t, errors.Is(err, domain.ErrUnknownProperty))
}
