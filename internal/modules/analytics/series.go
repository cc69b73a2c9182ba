package analytics

import (
	"context"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/classification"
	"github.com/aristath/rentboard/internal/modules/pivot"
)

// TrendPeriod is the number of months in the series moving average
const TrendPeriod = 3

// Series is one property's monthly values for a year
type Series struct {
	PropertyCode string             `json:"property_code"`
	Mode         domain.Mode        `json:"mode"`
	Year         int                `json:"year"`
	Months       []domain.YearMonth `json:"months"`
	Values       []float64          `json:"values"`
	// Trend is the TrendPeriod-month simple moving average; entries without
	// enough history are nil.
	Trend  []*float64 `json:"trend"`
	Mean   float64    `json:"mean"`
	StdDev float64    `json:"std_dev"`
	// Target is the monthly revenue target in Revenue mode, or the
	// occupancy threshold of each month in Occupancy mode.
	Target []float64 `json:"target"`
}

// PropertySeries returns the monthly values of one property with a trend line
func (s *Service) PropertySeries(ctx context.Context, req Request, property string) (*Series, error) {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	threshold, err := s.rules.Threshold(property)
	if err != nil {
		return nil, err
	}

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

	values := table.Row(property)
	if values == nil {
		values = make([]float64, len(table.Months))
	}

	series := &Series{
		PropertyCode: property,
		Mode:         mode,
		Year:         year,
		Months:       table.Months,
		Values:       values,
		Trend:        movingAverage(values, TrendPeriod),
		Target:       make([]float64, len(table.Months)),
	}
	series.Mean, series.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		series.StdDev = 0
	}

	bands := s.rules.Bands()
	for j, month := range table.Months {
		if mode == domain.ModeRevenue {
			series.Target[j] = threshold.MonthlyTarget
		} else {
			series.Target[j] = classification.OccupancyThreshold(month, bands)
		}
	}

	return series, nil
}

// movingAverage wraps talib.Sma, replacing the lookback entries with nil
func movingAverage(values []float64, period int) []*float64 {
	out := make([]*float64, len(values))
	if len(values) < period {
		return out
	}

	sma := talib.Sma(values, period)
	for i := period - 1; i < len(sma); i++ {
		v := sma[i]
		out[i] = &v
	}
	return out
}
