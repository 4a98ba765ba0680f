// Package gosarimax forecasts monthly series with a seasonal ARIMA model
// with exogenous regressors.
//
// The model is fixed to SARIMAX(1,1,1)(1,1,1)[12]: one regular and one
// seasonal difference, one autoregressive and one moving-average term at
// lag 1 and at lag 12, plus a linear regression on the exogenous columns.
// Parameters are estimated by exact-diffuse Kalman filter maximum
// likelihood.
//
// # Quick Start
//
//	frame, _ := timeseries.LoadFrameCSV("nead.csv", timeseries.DefaultCSVOptions())
//	endog, _ := frame.Series("Julgamentos")
//	exog, _ := frame.Matrix("Saldo de Entradas")
//	model, _ := sarimax.Fit(endog, exog)
//	forecast, _ := model.Forecast(futureExog, 6)
//
// # Packages
//
//   - sarimax: estimation and forecasting
//   - stats: additive decomposition, seasonal index and residual diagnostics
//   - timeseries: monthly series, regressor matrices and CSV loading
//   - report: year-over-year and holdout comparison tables
//
// The sarimax command in cmd/sarimax runs these from a YAML job file.
//
// # References
//
//   - Durbin, J., & Koopman, S. J. (2012). Time Series Analysis by State Space Methods
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
package gosarimax
