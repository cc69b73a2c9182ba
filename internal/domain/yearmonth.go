package domain

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month; the day of month is discarded
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM"
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}

// IsZero reports whether ym is the zero value
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// First returns midnight UTC of the first day of the month
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month
func (ym YearMonth) Days() int {
	return ym.First().AddDate(0, 1, -1).Day()
}

// Next returns the following month
func (ym YearMonth) Next() YearMonth {
	return MonthOf(ym.First().AddDate(0, 1, 0))
}

// Before reports whether ym is strictly earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MarshalText encodes the month as "YYYY-MM"
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

// UnmarshalText decodes "YYYY-MM"
func (ym *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// MonthRange returns every month from first to last inclusive, ascending
func MonthRange(first, last YearMonth) []YearMonth {
	if last.Before(first) {
		return nil
	}
	var months []YearMonth
	for m := first; !last.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}
