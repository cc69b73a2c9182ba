// Package pivot aggregates daily fragments into a property x month table.
package pivot

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/aristath/rentboard/internal/domain"
)

// Table is a dense property x month grid. Properties are rows, months are
// ascending columns, and combinations without fragments hold zero.
type Table struct {
	Mode       domain.Mode        `json:"mode"`
	Properties []string           `json:"properties"`
	Months     []domain.YearMonth `json:"months"`
	Values     [][]float64        `json:"values"`
}

type cellKey struct {
	property string
	month    domain.YearMonth
}

// Aggregate groups fragments by property and month. Revenue mode sums
// fragment revenue, Occupancy mode counts fragments (occupied nights).
// Every property in the input and every month between the earliest and the
// latest fragment appear in the result.
func Aggregate(fragments []domain.DailyFragment, mode domain.Mode) (*Table, error) {
	if !mode.Valid() {
		return nil, &domain.ModeError{Mode: string(mode)}
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("pivot: no fragments: %w", domain.ErrEmptyDataset)
	}

	cells := make(map[cellKey][]float64)
	propertySet := make(map[string]struct{})
	first, last := fragments[0].Month(), fragments[0].Month()

	for _, f := range fragments {
		month := f.Month()
		key := cellKey{property: f.PropertyCode, month: month}
		cells[key] = append(cells[key], f.Revenue)
		propertySet[f.PropertyCode] = struct{}{}

		if month.Before(first) {
			first = month
		}
		if last.Before(month) {
			last = month
		}
	}

	properties := make([]string, 0, len(propertySet))
	for p := range propertySet {
		properties = append(properties, p)
	}
	sort.Strings(properties)

	table := &Table{
		Mode:       mode,
		Properties: properties,
		Months:     domain.MonthRange(first, last),
	}

	table.Values = make([][]float64, len(properties))
	for i, p := range properties {
		row := make([]float64, len(table.Months))
		for j, m := range table.Months {
			row[j] = reduce(cells[cellKey{property: p, month: m}], mode)
		}
		table.Values[i] = row
	}

	return table, nil
}

// reduce folds one cell's fragment revenues. Revenues are summed in sorted
// order so the result does not depend on the order fragments arrived in.
func reduce(revenues []float64, mode domain.Mode) float64 {
	if mode == domain.ModeOccupancy {
		return float64(len(revenues))
	}
	if len(revenues) == 0 {
		return 0
	}
	sorted := append([]float64(nil), revenues...)
	sort.Float64s(sorted)
	return floats.Sum(sorted)
}

// SelectYear returns a table restricted to the months of one calendar year
func (t *Table) SelectYear(year int) (*Table, error) {
	return t.SelectMonths(func(m domain.YearMonth) bool { return m.Year == year },
		fmt.Sprintf("year %d", year))
}

// SelectMonths returns a table restricted to the months keep accepts
func (t *Table) SelectMonths(keep func(domain.YearMonth) bool, label string) (*Table, error) {
	var cols []int
	for j, m := range t.Months {
		if keep(m) {
			cols = append(cols, j)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("pivot: no data for %s: %w", label, domain.ErrEmptyDataset)
	}

	out := &Table{
		Mode:       t.Mode,
		Properties: append([]string(nil), t.Properties...),
		Months:     make([]domain.YearMonth, len(cols)),
		Values:     make([][]float64, len(t.Properties)),
	}
	for k, j := range cols {
		out.Months[k] = t.Months[j]
	}
	for i := range t.Properties {
		row := make([]float64, len(cols))
		for k, j := range cols {
			row[k] = t.Values[i][j]
		}
		out.Values[i] = row
	}
	return out, nil
}

// RowIndex returns the row of a property, or -1
func (t *Table) RowIndex(property string) int {
	for i, p := range t.Properties {
		if p == property {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the column of a month, or -1
func (t *Table) ColumnIndex(month domain.YearMonth) int {
	for j, m := range t.Months {
		if m == month {
			return j
		}
	}
	return -1
}

// Value returns the cell for property and month. Cells outside the table are zero.
func (t *Table) Value(property string, month domain.YearMonth) float64 {
	i, j := t.RowIndex(property), t.ColumnIndex(month)
	if i < 0 || j < 0 {
		return 0
	}
	return t.Values[i][j]
}

// Row returns a copy of a property's values, or nil when the property is absent
func (t *Table) Row(property string) []float64 {
	i := t.RowIndex(property)
	if i < 0 {
		return nil
	}
	return append([]float64(nil), t.Values[i]...)
}

// RowTotal sums a property's values across all months
func (t *Table) RowTotal(property string) float64 {
	row := t.Row(property)
	if len(row) == 0 {
		return 0
	}
	return floats.Sum(row)
}

// MonthLabels returns the column labels as "YYYY-MM"
func (t *Table) MonthLabels() []string {
	labels := make([]string, len(t.Months))
	for j, m := range t.Months {
		labels[j] = m.String()
	}
	return labels
}
