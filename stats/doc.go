// Package stats provides decomposition, seasonal indexing and diagnostic
// statistics for monthly time series.
//
// # Decomposition
//
// Classical additive decomposition with a 2×12 centered moving average:
//
//	decomp, err := stats.Decompose(series, stats.DefaultPeriod)
//	// decomp.Trend, decomp.Seasonal, decomp.Residual
//
// Decompose fills the undefined trend at both ends of the series. Use
// DecomposeWithOptions with FillTrendEdges false to keep them undefined.
//
// # Seasonal Index
//
// The percentage deviation of each calendar month from the overall mean:
//
//	idx, err := stats.SeasonalIndex(series)
//	jan, ok := idx.Value(time.January)
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 24, p+q+P+Q)
//	if lb.WhiteNoise(0.05) {
//	    // no autocorrelation left up to lag 24
//	}
//
//	kpss := stats.KPSS(differenced.Values, 0)
package stats
