package bookings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/rentboard/internal/domain"
)

// Input columns of a bookings export
const (
	ColConfirmationCode = "Confirmation_Code"
	ColApartmentCode    = "Apartment_code"
	ColOwner            = "Owner"
	ColStatus           = "Status"
	ColStartDate        = "Start_Date"
	ColEndDate          = "End_Date"
	ColNights           = "Number_of_Nights"
	ColReserved         = "Reserved"
	ColRevenue          = "Revenue"
)

// ErrMissingColumn is returned when the header lacks a required column
var ErrMissingColumn = errors.New("missing column")

var requiredColumns = []string{
	ColConfirmationCode, ColApartmentCode, ColOwner, ColStatus,
	ColStartDate, ColEndDate, ColNights, ColReserved, ColRevenue,
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006"}

// LineError is a CSV row that could not be parsed into a booking
type LineError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// ParseResult holds the records read from a CSV export
type ParseResult struct {
	Records []domain.BookingRecord
	Errors  []LineError
}

// ReadCSV reads a bookings export. Columns are located by header name, so
// extra columns and any column order are accepted. Rows that fail to parse
// are reported in ParseResult.Errors, as are repeated confirmation codes
// (the first row wins); only a missing header or an I/O failure returns an
// error.
func ReadCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("bookings csv: missing header: %w", domain.ErrEmptyDataset)
		}
		return nil, fmt.Errorf("bookings csv: failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("bookings csv: %w %q", ErrMissingColumn, col)
		}
	}

	result := &ParseResult{}
	seen := make(map[string]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, LineError{Line: parseErr.StartLine, Err: parseErr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("bookings csv: failed to read: %w", err)
		}
		if isBlank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRow(row, index)
		if err != nil {
			result.Errors = append(result.Errors, LineError{Line: line, Err: err.Error()})
			continue
		}
		if first, ok := seen[rec.ConfirmationCode]; ok {
			result.Errors = append(result.Errors, LineError{
				Line: line,
				Err:  fmt.Sprintf("duplicate %s %q, first seen on line %d", ColConfirmationCode, rec.ConfirmationCode, first),
			})
			continue
		}
		seen[rec.ConfirmationCode] = line
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func parseRow(row []string, index map[string]int) (domain.BookingRecord, error) {
	get := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.BookingRecord{
		ConfirmationCode: get(ColConfirmationCode),
		PropertyCode:     get(ColApartmentCode),
		Owner:            get(ColOwner),
		Status:           get(ColStatus),
	}
	if rec.ConfirmationCode == "" {
		return rec, fmt.Errorf("%s is empty", ColConfirmationCode)
	}

	var err error
	if rec.StartDate, err = parseDate(get(ColStartDate)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColStartDate, err)
	}
	if rec.EndDate, err = parseDate(get(ColEndDate)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColEndDate, err)
	}
	if rec.Nights, err = parseNights(get(ColNights)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColNights, err)
	}
	if rec.Reserved, err = parseBool(get(ColReserved)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColReserved, err)
	}
	if rec.Revenue, err = decimal.NewFromString(get(ColRevenue)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColRevenue, err)
	}

	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.CalendarDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseNights accepts "3" and the "3.0" pandas writes for integer columns with gaps
func parseNights(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "0", "no", "n":
		return false, nil
	case "true", "1", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
