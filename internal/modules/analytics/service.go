// Package analytics runs the booking pipeline end to end: load, filter by
// owner, normalize, allocate, pivot, then classify or summarize.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/classification"
	"github.com/aristath/rentboard/internal/modules/performance"
	"github.com/aristath/rentboard/internal/modules/pivot"
	"github.com/aristath/rentboard/internal/modules/rules"
	"github.com/aristath/rentboard/internal/utils"
)

// BookingSource provides the raw booking records
type BookingSource interface {
	List(ctx context.Context) ([]domain.BookingRecord, error)
}

// Request carries the parameters every entry point accepts.
// An empty Mode means Revenue; a zero Year means the latest year with data;
// an empty Owner or "all" keeps every owner.
type Request struct {
	Mode  string `json:"mode"`
	Year  int    `json:"year"`
	Owner string `json:"owner"`
}

// Rejection is a booking left out of the aggregation
type Rejection struct {
	ConfirmationCode string `json:"confirmation_code"`
	PropertyCode     string `json:"property_code"`
	Reason           string `json:"reason"`
}

// RejectedError is returned when bookings exist but every one of them was
// rejected. It matches domain.ErrEmptyDataset and carries the rejections.
type RejectedError struct {
	Rejected []Rejection
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("all %d bookings rejected: %s", len(e.Rejected), domain.ErrEmptyDataset)
}

// Unwrap lets errors.Is match domain.ErrEmptyDataset
func (e *RejectedError) Unwrap() error {
	return domain.ErrEmptyDataset
}

// Overview is the pivot of one year together with its classification
type Overview struct {
	Mode     domain.Mode          `json:"mode"`
	Year     int                  `json:"year"`
	Owner    string               `json:"owner"`
	Table    *pivot.Table         `json:"table"`
	Grid     *classification.Grid `json:"grid"`
	Accepted int                  `json:"accepted"`
	Rejected []Rejection          `json:"rejected"`
}

// Report bundles everything the exporter and the CLI render
type Report struct {
	Overview    *Overview            `json:"overview"`
	Performance *performance.Summary `json:"performance"`
	Thresholds  []rules.Threshold    `json:"thresholds"`
	Currency    Currency             `json:"currency"`
}

// Currency describes how amounts convert to the secondary currency
type Currency struct {
	Primary        string  `json:"primary"`
	Secondary      string  `json:"secondary"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Service answers analytics requests against an immutable rule set
type Service struct {
	rules  *rules.Rules
	source BookingSource
	cutoff domain.YearMonth
	log    zerolog.Logger
}

// NewService creates an analytics service. Months at or after cutoff are
// treated as incomplete by the performance summary; a zero cutoff disables
// clipping.
func NewService(r *rules.Rules, source BookingSource, cutoff domain.YearMonth, log zerolog.Logger) *Service {
	return &Service{
		rules:  r,
		source: source,
		cutoff: cutoff,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

// Rules returns the rule set the service runs against
func (s *Service) Rules() *rules.Rules {
	return s.rules
}

// Overview aggregates the requested year in the requested mode and grades every cell
func (s *Service) Overview(ctx context.Context, req Request) (*Overview, error) {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	timer := utils.NewTimer("analytics_overview", s.log)

	data, err := s.load(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	full, err := pivot.Aggregate(data.Fragments, mode)
	if err != nil {
		return nil, err
	}

	year := resolveYear(req.Year, full)
	table, err := full.SelectYear(year)
	if err != nil {
		return nil, err
	}

	grid, err := classification.Classify(table, mode, s.rules)
	if err != nil {
		return nil, err
	}

	timer.StopWithContext(map[string]interface{}{
		"mode":      string(mode),
		"year":      year,
		"fragments": len(data.Fragments),
		"rejected":  len(data.Rejected),
	})

	return &Overview{
		Mode:     mode,
		Year:     year,
		Owner:    ownerLabel(req.Owner),
		Table:    table,
		Grid:     grid,
		Accepted: data.Accepted,
		Rejected: rejections(data.Rejected),
	}, nil
}

// Performance summarizes revenue against targets for the requested year.
// Only Revenue mode is meaningful here.
func (s *Service) Performance(ctx context.Context, req Request) (*performance.Summary, error) {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if mode != domain.ModeRevenue {
		return nil, fmt.Errorf("performance summary: %w", &domain.ModeError{Mode: req.Mode})
	}

	data, err := s.load(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	table, err := pivot.Aggregate(data.Fragments, domain.ModeRevenue)
	if err != nil {
		return nil, err
	}

	year := resolveYear(req.Year, table)
	return performance.Summarize(table, s.rules, performance.WindowForYear(year, s.cutoff))
}

// Report computes the overview and the performance summary in one pass over
// the bookings. The performance summary always uses revenue, whatever the
// overview mode.
func (s *Service) Report(ctx context.Context, req Request) (*Report, error) {
	overview, err := s.Overview(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := s.Performance(ctx, Request{
		Mode:  string(domain.ModeRevenue),
		Year:  overview.Year,
		Owner: req.Owner,
	})
	if err != nil {
		return nil, err
	}

	primary, secondary := s.rules.Currencies()
	return &Report{
		Overview:    overview,
		Performance: summary,
		Thresholds:  s.rules.Thresholds(),
		Currency: Currency{
			Primary:        primary,
			Secondary:      secondary,
			ConversionRate: s.rules.ConversionRate(),
		},
	}, nil
}

// Properties lists the known property codes
func (s *Service) Properties() []string {
	return s.rules.Properties()
}

// Owners lists the configured owners, "all" first
func (s *Service) Owners() []string {
	return append([]string{domain.OwnerAll}, s.rules.Owners()...)
}

// Years lists, ascending, the calendar years holding at least one accepted
// night for owner. Rejected bookings do not contribute. An owner without
// bookings yields an empty list.
func (s *Service) Years(ctx context.Context, owner string) ([]int, error) {
	data, err := s.load(ctx, owner)
	if errors.Is(err, domain.ErrEmptyDataset) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, f := range data.Fragments {
		seen[f.Date.Year()] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func (s *Service) load(ctx context.Context, owner string) (bookings.Expansion, error) {
	records, err := s.source.List(ctx)
	if err != nil {
		return bookings.Expansion{}, fmt.Errorf("failed to load bookings: %w", err)
	}

	filtered := domain.FilterByOwner(records, owner)
	if len(filtered) == 0 {
		return bookings.Expansion{}, fmt.Errorf("no bookings for owner %q: %w", ownerLabel(owner), domain.ErrEmptyDataset)
	}

	expansion := bookings.Expand(filtered, s.rules)
	for _, rejected := range expansion.Rejected {
		s.log.Debug().
			Str("confirmation_code", rejected.ConfirmationCode).
			Str("property", rejected.PropertyCode).
			Str("reason", rejected.Reason()).
			Msg("Booking rejected")
	}

	if len(expansion.Fragments) == 0 && len(expansion.Rejected) > 0 {
		return expansion, &RejectedError{Rejected: rejections(expansion.Rejected)}
	}

	return expansion, nil
}

func parseMode(s string) (domain.Mode, error) {
	if s == "" {
		return domain.ModeRevenue, nil
	}
	return domain.ParseMode(s)
}

// resolveYear defaults to the latest year in the table
func resolveYear(year int, table *pivot.Table) int {
	if year != 0 || len(table.Months) == 0 {
		return year
	}
	return table.Months[len(table.Months)-1].Year
}

func ownerLabel(owner string) string {
	if domain.IsAllOwners(owner) {
		return domain.OwnerAll
	}
	return owner
}

func rejections(errs []*domain.RecordError) []Rejection {
	out := make([]Rejection, 0, len(errs))
	for _, e := range errs {
		out = append(out, Rejection{
			ConfirmationCode: e.ConfirmationCode,
			PropertyCode:     e.PropertyCode,
			Reason:           e.Reason(),
		})
	}
	return out
}
