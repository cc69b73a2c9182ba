// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Owner values accepted by the owner filter.
const (
	// OwnerAll disables owner filtering
	OwnerAll = "all"
)

// BookingRecord is one confirmed or tentative stay as delivered by ingestion.
// EndDate is exclusive: a booking from Jan 1 to Jan 4 covers three nights.
type BookingRecord struct {
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	ConfirmationCode string          `json:"confirmation_code"`
	PropertyCode     string          `json:"property_code"`
	Owner            string          `json:"owner"`
	Status           string          `json:"status"`
	Revenue          decimal.Decimal `json:"revenue"`
	Nights           int             `json:"nights"`
	Reserved         bool            `json:"reserved"`
}

// SpanNights returns the number of nights between start and end in calendar days.
func (b BookingRecord) SpanNights() int {
	return DaysBetween(b.StartDate, b.EndDate)
}

// NetBooking is a booking with platform fees and commission removed
type NetBooking struct {
	BookingRecord
	NetRevenue decimal.Decimal `json:"net_revenue"`
}

// DailyFragment is one night's share of a booking.
// Fragments are value copies keyed by confirmation code.
type DailyFragment struct {
	Date             time.Time `json:"date"`
	ConfirmationCode string    `json:"confirmation_code"`
	PropertyCode     string    `json:"property_code"`
	Owner            string    `json:"owner"`
	Status           string    `json:"status"`
	Revenue          float64   `json:"revenue"`
	Reserved         bool      `json:"reserved"`
}

// Month returns the calendar month the fragment falls in
func (f DailyFragment) Month() YearMonth {
	return MonthOf(f.Date)
}

// Mode selects how fragments are aggregated into the pivot table
type Mode string

const (
	// ModeRevenue sums fragment revenue per cell
	ModeRevenue Mode = "Revenue"
	// ModeOccupancy counts occupied nights per cell
	ModeOccupancy Mode = "Occupancy"
)

// ParseMode parses a user-supplied aggregation mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "revenue":
		return ModeRevenue, nil
	case "occupancy":
		return ModeOccupancy, nil
	default:
		return "", &ModeError{Mode: s}
	}
}

// Valid reports whether m is a supported aggregation mode
func (m Mode) Valid() bool {
	return m == ModeRevenue || m == ModeOccupancy
}

// IsAllOwners reports whether the owner filter value selects every owner
func IsAllOwners(owner string) bool {
	o := strings.TrimSpace(owner)
	return o == "" || strings.EqualFold(o, OwnerAll)
}

// FilterByOwner keeps the records belonging to owner.
// "all" and "" keep everything. The input slice is not modified.
func FilterByOwner(records []BookingRecord, owner string) []BookingRecord {
	if IsAllOwners(owner) {
		out := make([]BookingRecord, len(records))
		copy(out, records)
		return out
	}

	owner = strings.TrimSpace(owner)
	var out []BookingRecord
	for _, r := range records {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	return out
}

// CalendarDay truncates t to midnight UTC of the same calendar date
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from start to end
func DaysBetween(start, end time.Time) int {
	return int(CalendarDay(end).Sub(CalendarDay(start)).Hours() / 24)
}
