package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/rentboard/internal/domain"
)

// Date returns midnight UTC of the given calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Booking builds a consistent booking record; the night count is derived from the dates.
func Booking(code, property, owner string, start, end time.Time, revenue float64) domain.BookingRecord {
	return domain.BookingRecord{
		ConfirmationCode: code,
		PropertyCode:     property,
		Owner:            owner,
		Status:           "confirmed",
		StartDate:        start,
		EndDate:          end,
		Nights:           domain.DaysBetween(start, end),
		Reserved:         true,
		Revenue:          decimal.NewFromFloat(revenue),
	}
}

// NewBookingFixtures returns a small booking set spanning December 2022 to
// March 2023 across three properties and both owners.
func NewBookingFixtures() []domain.BookingRecord {
	return []domain.BookingRecord{
		Booking("HM001", "Alia 22", "Mohamed", Date(2023, 1, 1), Date(2023, 1, 4), 300),
		Booking("HM002", "Alia 22", "Mohamed", Date(2023, 1, 30), Date(2023, 2, 3), 520),
		Booking("HM003", "Alia 36", "Mounia", Date(2022, 12, 28), Date(2023, 1, 2), 900),
		Booking("HM004", "Alia 36", "Mounia", Date(2023, 3, 10), Date(2023, 3, 20), 1700),
		Booking("HM005", "Palmeraie B9 A1", "Mohamed", Date(2023, 2, 1), Date(2023, 2, 15), 3050),
	}
}

// BookingsCSV is NewBookingFixtures in the bookings export format
const BookingsCSV = `Confirmation_Code,Apartment_code,Owner,Status,Start_Date,End_Date,Number_of_Nights,Reserved,Revenue
HM001,Alia 22,Mohamed,confirmed,2023-01-01,2023-01-04,3,true,300
HM002,Alia 22,Mohamed,confirmed,2023-01-30,2023-02-03,4,true,520
HM003,Alia 36,Mounia,confirmed,2022-12-28,2023-01-02,5,true,900
HM004,Alia 36,Mounia,confirmed,2023-03-10,2023-03-20,10,true,1700
HM005,Palmeraie B9 A1,Mohamed,confirmed,2023-02-01,2023-02-15,14,true,3050
`
