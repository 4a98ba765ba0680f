package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders tables with locale-aware number formatting.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given locale, e.g.
// language.BrazilianPortuguese prints 23244 as "23.244".
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Number formats v rounded to an integer with digit grouping.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%.0f", v)
}

// Float formats v with the given number of decimals, or "-" when v is
// not finite.
func (f *Formatter) Float(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Percent formats a percentage with one decimal, or "-" when undefined.
func (f *Formatter) Percent(p *float64) string {
	if p == nil {
		return "-"
	}
	return f.printer.Sprintf("%.1f%%", *p)
}

// WriteYearOverYear writes rows as an aligned table.
func (f *Formatter) WriteYearOverYear(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "month\tpredicted\tyear ago\tvariation\t")
	for _, r := range rows {
		prev := "-"
		if r.Previous != nil {
			prev = f.Number(*r.Previous)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			r.Time.Format("2006-01"), f.Number(r.Predicted), prev, f.Percent(r.Variation))
	}
	return tw.Flush()
}

// WriteChecks writes backtest checks as an aligned table.
func (f *Formatter) WriteChecks(w io.Writer, checks []Check) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "month\tobserved\tpredicted\tdifference\trelative\t")
	for _, c := range checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			c.Time.Format("2006-01"), f.Number(c.Observed), f.Number(c.Predicted),
			f.Number(c.Difference), f.Percent(c.Relative))
	}
	return tw.Flush()
}
