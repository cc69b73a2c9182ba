package bookings

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/rules"
)

// Expansion is the outcome of expanding a batch of bookings
type Expansion struct {
	Fragments []domain.DailyFragment
	Rejected  []*domain.RecordError
	Accepted  int
}

// Expand normalizes and allocates every record. A record that fails
// validation is reported in Rejected and does not affect the others.
func Expand(records []domain.BookingRecord, r *rules.Rules) Expansion {
	normalizer := NewNormalizer(r)

	var out Expansion
	for _, rec := range records {
		net, err := normalizer.Normalize(rec)
		if err != nil {
			out.Rejected = append(out.Rejected, asRecordError(rec, err))
			continue
		}

		fragments, err := Allocate(net)
		if err != nil {
			out.Rejected = append(out.Rejected, asRecordError(rec, err))
			continue
		}

		out.Fragments = append(out.Fragments, fragments...)
		out.Accepted++
	}

	return out
}

func asRecordError(rec domain.BookingRecord, err error) *domain.RecordError {
	var recErr *domain.RecordError
	if errors.As(err, &recErr) {
		return recErr
	}
	return domain.NewRecordError(rec, err)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
