package bookings

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rentboard/internal/domain"
	testingpkg "github.com/aristath/rentboard/internal/testing"
)

func TestReadCSV_Fixtures(t *testing.T) {
	result, err := ReadCSV(strings.NewReader(testingpkg.BookingsCSV))
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	assert.Equal(t, testingpkg.NewBookingFixtures(), normalizeRevenue(result.Records))
}

func TestReadCSV_ColumnOrderAndExtras(t *testing.T) {
	input := "Revenue,Number_of_Nights,Notes,End_Date,Start_Date,Reserved,Status,Owner,Apartment_code,Confirmation_Code\n" +
		"450.50,3.0,late checkin,04/01/2023,01/01/2023,yes,confirmed,Mounia,Menara 15,HMX\n"

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "HMX", rec.ConfirmationCode)
	assert.Equal(t, "Menara 15", rec.PropertyCode)
	assert.Equal(t, testingpkg.Date(2023, 1, 1), rec.StartDate)
	assert.Equal(t, testingpkg.Date(2023, 1, 4), rec.EndDate)
	assert.Equal(t, 3, rec.Nights)
	assert.True(t, rec.Reserved)
	assert.True(t, rec.Revenue.Equal(decimal.RequireFromString("450.50")))
}

func TestReadCSV_RowErrorsAreCollected(t *testing.T) {
	input := strings.Join([]string{
		"Confirmation_Code,Apartment_code,Owner,Status,Start_Date,End_Date,Number_of_Nights,Reserved,Revenue",
		"OK1,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,true,300",
		"BAD1,Alia 22,Mohamed,confirmed,not-a-date,2023-01-04,3,true,300",
		"BAD2,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,2.5,true,300",
		"BAD3,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,maybe,300",
		"BAD4,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,true,lots",
		",Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,true,300",
		",,,,,,,,",
		"OK2,Alia 36,Mounia,confirmed,2023-02-01,2023-02-02,1,false,90",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "OK1", result.Records[0].ConfirmationCode)
	assert.Equal(t, "OK2", result.Records[1].ConfirmationCode)

	require.Len(t, result.Errors, 5)
	lines := make([]int, len(result.Errors))
	for i, e := range result.Errors {
		lines[i] = e.Line
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lines)
	assert.Contains(t, result.Errors[0].Error(), "Start_Date")
}

func TestReadCSV_HeaderProblems(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))

	_, err = ReadCSV(strings.NewReader("Confirmation_Code,Owner\nA,B\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Apartment_code")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	result, err := ReadCSV(strings.NewReader("\uFEFF" + testingpkg.BookingsCSV))
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Len(t, result.Records, len(testingpkg.NewBookingFixtures()))
	assert.Equal(t, "HM001", result.Records[0].ConfirmationCode)
}

func TestReadCSV_DuplicateConfirmationCode(t *testing.T) {
	input := strings.Join([]string{
		"Confirmation_Code,Apartment_code,Owner,Status,Start_Date,End_Date,Number_of_Nights,Reserved,Revenue",
		"HM1,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,true,300",
		"HM1,Alia 36,Mounia,confirmed,2023-02-01,2023-02-03,2,true,500",
		"HM2,Alia 36,Mounia,confirmed,2023-03-01,2023-03-02,1,true,90",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "Alia 22", result.Records[0].PropertyCode)
	assert.Equal(t, "HM2", result.Records[1].ConfirmationCode)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Err, `duplicate Confirmation_Code "HM1"`)
	assert.Contains(t, result.Errors[0].Err, "line 2")
}

// normalizeRevenue re-creates revenue values from floats so they compare
// equal to fixtures built with decimal.NewFromFloat.
func normalizeRevenue(records []domain.BookingRecord) []domain.BookingRecord {
	out := make([]domain.BookingRecord, len(records))
	for i, r := range records {
		f, _ := r.Revenue.Float64()
		r.Revenue = decimal.NewFromFloat(f)
		out[i] = r
	}
	return out
}
