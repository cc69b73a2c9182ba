// Package performance rolls a revenue pivot up into a yearly summary of
// earnings against each property's monthly target.
package performance

import (
	"fmt"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/pivot"
	"github.com/aristath/rentboard/internal/modules/rules"
)

// Window is the half-open month range [From, To) a summary covers
type Window struct {
	From domain.YearMonth `json:"from"`
	To   domain.YearMonth `json:"to"`
}

// Contains reports whether m falls inside the window
func (w Window) Contains(m domain.YearMonth) bool {
	return !m.Before(w.From) && m.Before(w.To)
}

// Months returns the number of months in the window
func (w Window) Months() int {
	if !w.From.Before(w.To) {
		return 0
	}
	return len(domain.MonthRange(w.From, w.To)) - 1
}

// WindowForYear covers January of year up to January of the following
// year. A non-zero cutoff clips the window so that the cutoff month and
// everything after it (incomplete months) are left out.
func WindowForYear(year int, cutoff domain.YearMonth) Window {
	w := Window{
		From: domain.YearMonth{Year: year, Month: 1},
		To:   domain.YearMonth{Year: year + 1, Month: 1},
	}
	if !cutoff.IsZero() && cutoff.Before(w.To) {
		w.To = cutoff
	}
	if w.To.Before(w.From) {
		w.To = w.From
	}
	return w
}

// Row is one property's roll-up
type Row struct {
	PropertyCode   string  `json:"property_code"`
	MonthsActive   int     `json:"months_active"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalThreshold float64 `json:"total_threshold"`
	RealEarnings   float64 `json:"real_earnings"`
	PerformancePct float64 `json:"performance_pct"`
	// PerformanceDefined is false when the property had no active month
	PerformanceDefined bool `json:"performance_defined"`
}

// Audit records the months-active count of a property left out by policy
type Audit struct {
	PropertyCode string `json:"property_code"`
	MonthsActive int    `json:"months_active"`
}

// Summary is the yearly performance table
type Summary struct {
	Year     int     `json:"year"`
	Window   Window  `json:"window"`
	Rows     []Row   `json:"rows"`
	Excluded []Audit `json:"excluded"`
}

// Row returns the summary row of a property
func (s *Summary) Row(property string) (Row, bool) {
	for _, r := range s.Rows {
		if r.PropertyCode == property {
			return r, true
		}
	}
	return Row{}, false
}

// Summarize computes the performance summary of a revenue table over window.
// Every property's active months are counted first; properties on the
// exclusion list then go to Summary.Excluded without further computation.
func Summarize(table *pivot.Table, r *rules.Rules, window Window) (*Summary, error) {
	if table == nil {
		return nil, fmt.Errorf("performance: nil table: %w", domain.ErrEmptyDataset)
	}
	if table.Mode != domain.ModeRevenue {
		return nil, fmt.Errorf("performance: needs a %s table: %w",
			domain.ModeRevenue, &domain.ModeError{Mode: string(table.Mode)})
	}

	summary := &Summary{
		Year:     window.From.Year,
		Window:   window,
		Rows:     make([]Row, 0, len(table.Properties)),
		Excluded: []Audit{},
	}

	for i, property := range table.Properties {
		active, revenue := 0, 0.0
		for j, month := range table.Months {
			if !window.Contains(month) {
				continue
			}
			value := table.Values[i][j]
			if value != 0 {
				active++
			}
			revenue += value
		}

		if r.Excluded(property) {
			summary.Excluded = append(summary.Excluded, Audit{PropertyCode: property, MonthsActive: active})
			continue
		}

		threshold, err := r.Threshold(property)
		if err != nil {
			return nil, fmt.Errorf("performance: %w", err)
		}
		summary.Rows = append(summary.Rows, newRow(property, active, revenue, threshold.MonthlyTarget))
	}

	return summary, nil
}

func newRow(property string, active int, revenue, target float64) Row {
	row := Row{
		PropertyCode:   property,
		MonthsActive:   active,
		TotalRevenue:   revenue,
		TotalThreshold: float64(active) * target,
	}
	row.RealEarnings = row.TotalRevenue - row.TotalThreshold
	if row.TotalThreshold != 0 {
		row.PerformancePct = row.RealEarnings / row.TotalThreshold * 100
		row.PerformanceDefined = true
	}
	return row
}
