// Package bookings turns raw booking records into per-night revenue
// fragments and stores the imported records.
package bookings

import (
	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/rules"
)

// Normalizer removes per-property fees and platform commission from gross revenue
type Normalizer struct {
	rules *rules.Rules
}

// NewNormalizer creates a normalizer for the given rule set
func NewNormalizer(r *rules.Rules) *Normalizer {
	return &Normalizer{rules: r}
}

// Normalize computes net = (gross - deduction) x retention.
// Bookings for properties without configured rules are rejected with
// domain.ErrUnknownProperty.
func (n *Normalizer) Normalize(rec domain.BookingRecord) (domain.NetBooking, error) {
	deduction, err := n.rules.Deduction(rec.PropertyCode)
	if err != nil {
		return domain.NetBooking{}, domain.NewRecordError(rec, err)
	}

	return domain.NetBooking{
		BookingRecord: rec,
		NetRevenue:    rec.Revenue.Sub(deduction).Mul(n.rules.Retention()),
	}, nil
}
