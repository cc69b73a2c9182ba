package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"Revenue", ModeRevenue, false},
		{"revenue", ModeRevenue, false},
		{" Occupancy ", ModeOccupancy, false},
		{"OCCUPANCY", ModeOccupancy, false},
		{"count", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestFilterByOwner(t *testing.T) {
	records := []BookingRecord{
		{ConfirmationCode: "A", Owner: "Mohamed"},
		{ConfirmationCode: "B", Owner: "Mounia"},
		{ConfirmationCode: "C", Owner: "Mohamed"},
	}

	t.Run("all keeps everything", func(t *testing.T) {
		assert.Len(t, FilterByOwner(records, "all"), 3)
		assert.Len(t, FilterByOwner(records, "ALL"), 3)
		assert.Len(t, FilterByOwner(records, ""), 3)
	})

	t.Run("specific owner", func(t *testing.T) {
		got := FilterByOwner(records, "Mohamed")
		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].ConfirmationCode)
		assert.Equal(t, "C", got[1].ConfirmationCode)
	})

	t.Run("unknown owner yields nothing", func(t *testing.T) {
		assert.Empty(t, FilterByOwner(records, "Nobody"))
	})

	t.Run("does not alias input", func(t *testing.T) {
		got := FilterByOwner(records, "all")
		got[0].Owner = "changed"
		assert.Equal(t, "Mohamed", records[0].Owner)
	})
}

func TestBookingRecord_SpanNights(t *testing.T) {
	b := BookingRecord{
		StartDate: time.Date(2023, 1, 1, 15, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 1, 4, 11, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, b.SpanNights())

	// Local dates count, not UTC instants.
	loc := time.FixedZone("UTC+1", 3600)
	b = BookingRecord{
		StartDate: time.Date(2023, 3, 25, 0, 30, 0, 0, loc),
		EndDate:   time.Date(2023, 3, 27, 0, 30, 0, 0, loc),
	}
	assert.Equal(t, 2, b.SpanNights())
}

func TestRecordError_Unwrap(t *testing.T) {
	rec := BookingRecord{ConfirmationCode: "HM123", PropertyCode: "Alia 22"}
	err := NewRecordError(rec, ErrInvalidDateRange)

	assert.True(t, errors.Is(err, ErrInvalidDateRange))
	assert.Equal(t, "booking HM123: invalid date range", err.Error())
	assert.Equal(t, "invalid date range", err.Reason())

	var recErr *RecordError
	require.True(t, errors.As(error(err), &recErr))
	assert.Equal(t, "Alia 22", recErr.PropertyCode)
}

func TestYearMonth(t *testing.T) {
	t.Run("days", func(t *testing.T) {
		assert.Equal(t, 31, YearMonth{2023, time.January}.Days())
		assert.Equal(t, 28, YearMonth{2023, time.February}.Days())
		assert.Equal(t, 29, YearMonth{2024, time.February}.Days())
		assert.Equal(t, 30, YearMonth{2023, time.April}.Days())
	})

	t.Run("next wraps year", func(t *testing.T) {
		assert.Equal(t, YearMonth{2024, time.January}, YearMonth{2023, time.December}.Next())
	})

	t.Run("ordering", func(t *testing.T) {
		assert.True(t, YearMonth{2022, time.December}.Before(YearMonth{2023, time.January}))
		assert.False(t, YearMonth{2023, time.January}.Before(YearMonth{2023, time.January}))
	})

	t.Run("parse and format", func(t *testing.T) {
		ym, err := ParseYearMonth("2023-09")
		require.NoError(t, err)
		assert.Equal(t, YearMonth{2023, time.September}, ym)
		assert.Equal(t, "2023-09", ym.String())

		_, err = ParseYearMonth("09/2023")
		assert.Error(t, err)
	})

	t.Run("month of ignores day", func(t *testing.T) {
		assert.Equal(t, YearMonth{2023, time.March}, MonthOf(date(2023, 3, 31)))
	})
}

func TestMonthRange(t *testing.T) {
	got := MonthRange(YearMonth{2022, time.November}, YearMonth{2023, time.February})
	assert.Equal(t, []YearMonth{
		{2022, time.November},
		{2022, time.December},
		{2023, time.January},
		{2023, time.February},
	}, got)

	assert.Nil(t, MonthRange(YearMonth{2023, time.February}, YearMonth{2023, time.January}))
}
