package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/modules/classification"
	"github.com/aristath/rentboard/internal/modules/performance"
	"github.com/aristath/rentboard/internal/modules/rules"
)

// classMarker is appended to each pivot cell so grades survive a plain terminal
func classMarker(c classification.Class) string {
	switch c {
	case classification.Above:
		return "+"
	case classification.Near:
		return "~"
	case classification.Below:
		return "-"
	}
	return " "
}

func formatCell(mode domain.Mode, v float64) string {
	if mode == domain.ModeOccupancy {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func printOverview(w io.Writer, ov *analytics.Overview) {
	fmt.Fprintf(w, "%s %d (owner %s)\n", ov.Mode, ov.Year, ov.Owner)
	fmt.Fprintln(w, "==================================")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Property\t")
	for _, m := range ov.Table.Months {
		fmt.Fprintf(tw, "%s\t", m)
	}
	fmt.Fprintln(tw, "Total\t")

	for i, property := range ov.Table.Properties {
		fmt.Fprintf(tw, "%s\t", property)
		total := 0.0
		for j, v := range ov.Table.Values[i] {
			total += v
			fmt.Fprintf(tw, "%s%s\t", formatCell(ov.Mode, v), classMarker(ov.Grid.Cells[i][j]))
		}
		fmt.Fprintf(tw, "%s \t\n", formatCell(ov.Mode, total))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nLegend: + above (%d)  ~ near (%d)  - below (%d)  blank no data (%d)\n",
		ov.Grid.Count(classification.Above),
		ov.Grid.Count(classification.Near),
		ov.Grid.Count(classification.Below),
		ov.Grid.Count(classification.NoData))

	fmt.Fprintf(w, "Bookings used: %d\n", ov.Accepted)
	if len(ov.Rejected) > 0 {
		fmt.Fprintf(w, "REJECTED (%d):\n", len(ov.Rejected))
		for _, r := range ov.Rejected {
			fmt.Fprintf(w, "  [%s] %s: %s\n", r.ConfirmationCode, r.PropertyCode, r.Reason)
		}
	}
}

func formatPct(r performance.Row) string {
	if !r.PerformanceDefined {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", r.PerformancePct)
}

func printPerformance(w io.Writer, s *performance.Summary, cur analytics.Currency) {
	fmt.Fprintf(w, "Performance %d (%s to %s)\n", s.Year, s.Window.From, s.Window.To)
	fmt.Fprintln(w, "==================================")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Property\tMonths\tRevenue %s\tThreshold %s\tEarnings %s\tEarnings %s\tPerformance\t\n",
		cur.Primary, cur.Primary, cur.Primary, cur.Secondary)
	for _, r := range s.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			r.PropertyCode, r.MonthsActive, r.TotalRevenue, r.TotalThreshold,
			r.RealEarnings, r.RealEarnings*cur.ConversionRate, formatPct(r))
	}
	tw.Flush()

	if len(s.Excluded) > 0 {
		fmt.Fprintf(w, "\nEXCLUDED (%d):\n", len(s.Excluded))
		for _, a := range s.Excluded {
			fmt.Fprintf(w, "  %s (%d active months)\n", a.PropertyCode, a.MonthsActive)
		}
	}
}

func printThresholds(w io.Writer, thresholds []rules.Threshold, primary, secondary string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Property\tTarget %s\tTarget %s\t\n", primary, secondary)
	for _, t := range thresholds {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t\n", t.PropertyCode, t.MonthlyTarget, t.MonthlyTargetSecondary)
	}
	tw.Flush()
}

func printImport(w io.Writer, report *bookings.ImportReport) {
	fmt.Fprintf(w, "Imported %d bookings from %s (batch %s)\n", report.RecordCount, report.Source, report.BatchID)
	if len(report.LineErrors) > 0 {
		fmt.Fprintf(w, "SKIPPED (%d):\n", len(report.LineErrors))
		for _, e := range report.LineErrors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}
