// Package classification grades pivot cells against their targets.
//
// Revenue targets belong to a property, so revenue cells compare against
// their row's threshold. Occupancy targets depend on the length of the
// month, so occupancy cells compare against their column's threshold.
package classification

import (
	"fmt"
	"math"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/pivot"
	"github.com/aristath/rentboard/internal/modules/rules"
)

// Class is the ordinal grade of one cell
type Class int

const (
	// Below means at or under the lower bound
	Below Class = -2
	// NoData means the cell value is exactly zero
	NoData Class = 0
	// Near means between the bounds
	Near Class = 1
	// Above means at or over the upper bound
	Above Class = 2
)

func (c Class) String() string {
	switch c {
	case Below:
		return "BELOW"
	case NoData:
		return "NO_DATA"
	case Near:
		return "NEAR"
	case Above:
		return "ABOVE"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// MarshalText encodes the class name
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name
func (c *Class) UnmarshalText(b []byte) error {
	switch string(b) {
	case "BELOW":
		*c = Below
	case "NO_DATA":
		*c = NoData
	case "NEAR":
		*c = Near
	case "ABOVE":
		*c = Above
	default:
		return fmt.Errorf("unknown class %q", string(b))
	}
	return nil
}

// Grid has the shape of the pivot table it was computed from
type Grid struct {
	Mode       domain.Mode        `json:"mode"`
	Properties []string           `json:"properties"`
	Months     []domain.YearMonth `json:"months"`
	Cells      [][]Class          `json:"cells"`
}

// Count returns how many cells hold class c
func (g *Grid) Count(c Class) int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell == c {
				n++
			}
		}
	}
	return n
}

// Classify grades every cell of table. Revenue mode needs a threshold for
// every row's property; Occupancy mode derives thresholds from month length.
func Classify(table *pivot.Table, mode domain.Mode, r *rules.Rules) (*Grid, error) {
	if !mode.Valid() {
		return nil, &domain.ModeError{Mode: string(mode)}
	}
	if table == nil {
		return nil, fmt.Errorf("classification: nil table: %w", domain.ErrEmptyDataset)
	}

	bands := r.Bands()
	grid := &Grid{
		Mode:       mode,
		Properties: append([]string(nil), table.Properties...),
		Months:     append([]domain.YearMonth(nil), table.Months...),
		Cells:      make([][]Class, len(table.Properties)),
	}

	switch mode {
	case domain.ModeRevenue:
		for i, property := range table.Properties {
			threshold, err := r.Threshold(property)
			if err != nil {
				return nil, fmt.Errorf("classification: %w", err)
			}
			row := make([]Class, len(table.Months))
			for j, value := range table.Values[i] {
				row[j] = RevenueClass(value, threshold.MonthlyTarget, bands)
			}
			grid.Cells[i] = row
		}

	case domain.ModeOccupancy:
		columnThresholds := make([]float64, len(table.Months))
		for j, month := range table.Months {
			columnThresholds[j] = OccupancyThreshold(month, bands)
		}
		for i := range table.Properties {
			row := make([]Class, len(table.Months))
			for j, value := range table.Values[i] {
				row[j] = OccupancyClass(value, columnThresholds[j], bands)
			}
			grid.Cells[i] = row
		}
	}

	return grid, nil
}

// RevenueClass grades a revenue value against a property's monthly target
func RevenueClass(value, target float64, bands rules.Bands) Class {
	switch {
	case value == 0:
		return NoData
	case value >= target*bands.RevenueAbove:
		return Above
	case value <= target*bands.RevenueBelow:
		return Below
	default:
		return Near
	}
}

// OccupancyThreshold is the number of nights a property should be booked
// in month: days in month x occupancy target, rounded to a whole night.
func OccupancyThreshold(month domain.YearMonth, bands rules.Bands) float64 {
	return math.Round(float64(month.Days()) * bands.OccupancyTarget)
}

// OccupancyClass grades a night count against a month's threshold
func OccupancyClass(value, threshold float64, bands rules.Bands) Class {
	switch {
	case value == 0:
		return NoData
	case value >= threshold*bands.OccupancyAbove:
		return Above
	case value <= threshold*bands.OccupancyBelow:
		return Below
	default:
		return Near
	}
}
