package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sartorproj/gosarimax/report"
	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/stats"
)

// textWriter is implemented by every command result.
type textWriter interface {
	writeText(w io.Writer, f *report.Formatter) error
}

func (a *app) render(w io.Writer, res textWriter) error {
	if a.cfg.Output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return res.writeText(w, a.formatter)
}

// finite maps NaN and ±Inf to nil so results always encode as JSON.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type point struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

type coefficient struct {
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
	StdErr   *float64 `json:"std_err"`
}

type ljungBox struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"`
}

// forecastResult holds a fitted model and its forecast for export.
type forecastResult struct {
	Target          string        `json:"target"`
	Model           string        `json:"model"`
	Exog            []string      `json:"exog,omitempty"`
	NObs            int           `json:"n_obs"`
	NEff            int           `json:"n_eff"`
	LogLik          *float64      `json:"log_likelihood"`
	AIC             *float64      `json:"aic"`
	AICc            *float64      `json:"aicc"`
	BIC             *float64      `json:"bic"`
	Sigma2          *float64      `json:"sigma2"`
	Iterations      int           `json:"iterations"`
	Status          string        `json:"status"`
	Singular        bool          `json:"covariance_singular"`
	Coefficients    []coefficient `json:"coefficients"`
	LjungBox        *ljungBox     `json:"ljung_box,omitempty"`
	SignificantLags []int         `json:"significant_residual_lags,omitempty"` // residual ACF outside the 95% band
	Forecasts       []report.Row  `json:"forecasts"`
	Trend           []point       `json:"trend,omitempty"`
}

func newForecastResult(in *inputs, m *sarimax.Model, f *sarimax.Forecast, dec *stats.DecompositionResult) *forecastResult {
	sum := m.Summary()
	res := &forecastResult{
		Target:       in.target,
		Model:        m.Order.String(),
		Exog:         in.exogNames,
		NObs:         m.NObs,
		NEff:         m.NEff,
		LogLik:       finite(m.LogLik),
		AIC:          finite(m.AIC),
		AICc:         finite(m.AICc),
		BIC:          finite(m.BIC),
		Sigma2:       finite(m.Sigma2),
		Iterations:   m.Iterations,
		Status:       m.Status,
		Singular:     sum.CovarianceSingular,
		Coefficients: coefficients(sum.Params, sum.StdErrors),
		Forecasts:    report.YearOverYear(in.endog, f.Series()),
	}
	if acf := sum.ResidualACF; acf != nil {
		res.SignificantLags = acf.SignificantLags()
	}
	if lb := sum.LjungBox; lb != nil {
		res.LjungBox = &ljungBox{Statistic: lb.Statistic, PValue: lb.PValue, Lags: lb.Lags, DOF: lb.DOF}
	}
	if dec != nil {
		// last observed year of the trend
		start := max(0, dec.Trend.Len()-12)
		for i := start; i < dec.Trend.Len(); i++ {
			res.Trend = append(res.Trend, point{Time: dec.Trend.Timestamps[i], Value: finite(dec.Trend.Values[i])})
		}
	}
	return res
}

func coefficients(p, se sarimax.Params) []coefficient {
	var out []coefficient
	add := func(name string, est, err []float64) {
		for i := range est {
			label := name
			if len(est) > 1 {
				label = fmt.Sprintf("%s.L%d", name, i+1)
			}
			out = append(out, coefficient{Name: label, Estimate: finite(est[i]), StdErr: finite(err[i])})
		}
	}
	add("ar", p.AR, se.AR)
	add("ma", p.MA, se.MA)
	add("ar.S", p.SAR, se.SAR)
	add("ma.S", p.SMA, se.SMA)
	for i, name := range p.ExogNames {
		out = append(out, coefficient{Name: name, Estimate: finite(p.Exog[i]), StdErr: finite(se.Exog[i])})
	}
	return out
}

func estimate(f *report.Formatter, v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return f.Float(*v, decimals)
}

func (r *forecastResult) writeText(w io.Writer, f *report.Formatter) error {
	title := fmt.Sprintf("%s for %s", r.Model, r.Target)
	if len(r.Exog) > 0 {
		title += fmt.Sprintf(" (exog: %s)", strings.Join(r.Exog, ", "))
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "observations %d, effective %d, %s after %d iterations\n", r.NObs, r.NEff, r.Status, r.Iterations)
	fmt.Fprintf(w, "log-likelihood %s  AIC %s  AICc %s  BIC %s\n",
		estimate(f, r.LogLik, 2), estimate(f, r.AIC, 2), estimate(f, r.AICc, 2), estimate(f, r.BIC, 2))
	if r.LjungBox != nil {
		fmt.Fprintf(w, "Ljung-Box Q(%d) %s, p-value %s\n",
			r.LjungBox.Lags, f.Float(r.LjungBox.Statistic, 2), f.Float(r.LjungBox.PValue, 3))
	}
	if len(r.SignificantLags) > 0 {
		lags := make([]string, len(r.SignificantLags))
		for i, l := range r.SignificantLags {
			lags[i] = fmt.Sprint(l)
		}
		fmt.Fprintf(w, "residual autocorrelation significant at lags %s\n", strings.Join(lags, ", "))
	}
	if r.Singular {
		fmt.Fprintln(w, "standard errors unavailable: Hessian not positive definite")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "coefficient\testimate\tstd err\t")
	for _, c := range r.Coefficients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.Name, estimate(f, c.Estimate, 4), estimate(f, c.StdErr, 4))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := f.WriteYearOverYear(w, r.Forecasts); err != nil {
		return err
	}

	if len(r.Trend) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "month\ttrend\t")
		for _, p := range r.Trend {
			fmt.Fprintf(tw, "%s\t%s\t\n", p.Time.Format("2006-01"), numberOrDash(f, p.Value))
		}
		return tw.Flush()
	}
	return nil
}

func numberOrDash(f *report.Formatter, v *float64) string {
	if v == nil {
		return "-"
	}
	return f.Number(*v)
}

type component struct {
	Time     time.Time `json:"time"`
	Observed float64   `json:"observed"`
	Trend    *float64  `json:"trend"`
	Seasonal float64   `json:"seasonal"`
	Residual *float64  `json:"residual"`
}

type decomposeResult struct {
	Target     string      `json:"target"`
	Period     int         `json:"period"`
	Pattern    []float64   `json:"pattern"`
	Components []component `json:"components"`
}

func newDecomposeResult(target string, dec *stats.DecompositionResult) *decomposeResult {
	res := &decomposeResult{Target: target, Period: dec.Period, Pattern: dec.Pattern}
	for i, t := range dec.Observed.Timestamps {
		res.Components = append(res.Components, component{
			Time:     t,
			Observed: dec.Observed.Values[i],
			Trend:    finite(dec.Trend.Values[i]),
			Seasonal: dec.Seasonal.Values[i],
			Residual: finite(dec.Residual.Values[i]),
		})
	}
	return res
}

func (r *decomposeResult) writeText(w io.Writer, f *report.Formatter) error {
	fmt.Fprintf(w, "additive decomposition of %s, period %d\n\n", r.Target, r.Period)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "month\tobserved\ttrend\tseasonal\tresidual\t")
	for _, c := range r.Components {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", c.Time.Format("2006-01"),
			f.Number(c.Observed), numberOrDash(f, c.Trend), f.Number(c.Seasonal), numberOrDash(f, c.Residual))
	}
	return tw.Flush()
}

type monthIndex struct {
	Month string   `json:"month"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Index *float64 `json:"index_pct"`
}

type indexResult struct {
	Target      string       `json:"target"`
	OverallMean float64      `json:"overall_mean"`
	Months      []monthIndex `json:"months"`
}

func newIndexResult(target string, idx *stats.SeasonalIndexResult) *indexResult {
	res := &indexResult{Target: target, OverallMean: idx.OverallMean}
	for m := time.January; m <= time.December; m++ {
		mi := monthIndex{Month: m.String(), Count: idx.Counts[m-1]}
		if v, ok := idx.Value(m); ok {
			mi.Mean = finite(idx.MonthlyMean[m-1])
			mi.Index = finite(v)
		}
		res.Months = append(res.Months, mi)
	}
	return res
}

func (r *indexResult) writeText(w io.Writer, f *report.Formatter) error {
	fmt.Fprintf(w, "seasonal index of %s, overall mean %s\n\n", r.Target, f.Number(r.OverallMean))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "month\tcount\tmean\tindex\t")
	for _, m := range r.Months {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", m.Month, m.Count, numberOrDash(f, m.Mean), f.Percent(m.Index))
	}
	return tw.Flush()
}

type backtestResult struct {
	Target string         `json:"target"`
	Model  string         `json:"model"`
	Exog   []string       `json:"exog,omitempty"`
	Checks []report.Check `json:"checks"`
	RMSE   float64        `json:"rmse"`
	MAE    float64        `json:"mae"`
	MAPE   float64        `json:"mape"`
}

type backtestResults []backtestResult

func (rs backtestResults) writeText(w io.Writer, f *report.Formatter) error {
	for i, r := range rs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s holdout for %s: RMSE %s, MAE %s, MAPE %s\n",
			r.Model, r.Target, f.Number(r.RMSE), f.Number(r.MAE), f.Percent(&r.MAPE))
		if err := f.WriteChecks(w, r.Checks); err != nil {
			return err
		}
	}
	return nil
}

// metrics calculates forecast accuracy metrics
func metrics(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}
