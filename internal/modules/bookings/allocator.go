package bookings

import (
	"fmt"

	"github.com/aristath/rentboard/internal/domain"
)

// Allocate splits a net booking into one fragment per night of [start, end).
// Each fragment carries net revenue / nights. Dates are produced in ascending order.
func Allocate(b domain.NetBooking) ([]domain.DailyFragment, error) {
	start := domain.CalendarDay(b.StartDate)
	end := domain.CalendarDay(b.EndDate)

	if !end.After(start) {
		return nil, domain.NewRecordError(b.BookingRecord, fmt.Errorf("%w: end %s is not after start %s",
			domain.ErrInvalidDateRange, end.Format("2006-01-02"), start.Format("2006-01-02")))
	}
	if b.Nights <= 0 {
		return nil, domain.NewRecordError(b.BookingRecord, fmt.Errorf("%w: %d", domain.ErrInvalidNightCount, b.Nights))
	}
	if span := domain.DaysBetween(start, end); span != b.Nights {
		return nil, domain.NewRecordError(b.BookingRecord, fmt.Errorf("%w: record says %d, dates span %d",
			domain.ErrInvalidNightCount, b.Nights, span))
	}

	perNight, _ := b.NetRevenue.Div(decimalFromInt(b.Nights)).Float64()

	fragments := make([]domain.DailyFragment, 0, b.Nights)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		fragments = append(fragments, domain.DailyFragment{
			Date:             d,
			ConfirmationCode: b.ConfirmationCode,
			PropertyCode:     b.PropertyCode,
			Owner:            b.Owner,
			Status:           b.Status,
			Reserved:         b.Reserved,
			Revenue:          perNight,
		})
	}

	return fragments, nil
}
