// Package timeseries provides monthly time series data structures and utilities.
//
// This package includes the Series type for representing a monthly series,
// the Matrix type for exogenous regressors aligned with it, and the Frame
// type for dated multi-column tables loaded from CSV.
//
// # Creating a Series
//
// Create a monthly series from a slice:
//
//	start := time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)
//	series := timeseries.NewMonthly(start, []float64{15865, 17767, 18126})
//
//	if err := series.ValidateMonthly(); err != nil {
//	    log.Fatal(err)
//	}
//
// Timestamps are normalized to the first day of the month in UTC. Use
// AddMonths and MonthRange to build future month indexes.
//
// # Exogenous Regressors
//
// A Matrix holds one row per month and a fixed number of columns:
//
//	exog, err := timeseries.MatrixFromColumns(
//	    []string{"Saldo de Entradas"},
//	    saldo,
//	)
//
// # Loading from CSV
//
// Load a dated table and select columns from it:
//
//	frame, err := timeseries.LoadFrameCSV("nead.csv", nil)
//	endog, err := frame.Series("Julgamentos")
//	exog, err := frame.Matrix("Saldo de Entradas")
//
// Missing values ("NA", "NaN", "null" or empty) are kept as NaN so rows stay
// aligned with their month; ValidateMonthly rejects them.
//
// # CSV Options
//
// Customize CSV loading:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn: "Data",
//	    Columns:    []string{"Julgamentos", "Saldo de Entradas"},
//	    DateFormat: "2006-01-02",
//	    Delimiter:  ';',
//	}
//	frame, err := timeseries.LoadFrameFromReader(reader, opts)
//
// # Transformations
//
//	diff := series.Diff()             // First difference
//	sdiff := series.SeasonalDiff(12)  // Seasonal difference
//	ma := series.MovingAverage(12)    // Trailing moving average
//	subset := series.Slice(10, 30)
package timeseries
