// Package sarimax implements a seasonal ARIMA model with exogenous
// regressors for monthly series, fixed at SARIMAX(1,1,1)(1,1,1)[12].
//
// The model is a regression with integrated seasonal ARMA errors:
//
//	y_t = x_tᵀβ + u_t
//	(1-φL)(1-ΦL¹²)(1-L)(1-L¹²) u_t = (1+θL)(1+ΘL¹²) ε_t
//
// Estimation is exact maximum likelihood through a Kalman filter on a state
// space form that keeps the differencing in the transition matrix, so the
// series is never differenced before fitting.
//
// # Basic Usage
//
//	model, err := sarimax.Fit(endog, exog)
//	if err != nil {
//	    var estErr *sarimax.EstimationError
//	    if errors.As(err, &estErr) && estErr.Reason == sarimax.ReasonSingular {
//	        // drop a regressor and retry
//	    }
//	    log.Fatal(err)
//	}
//
//	// exogFuture holds one row per forecast month
//	fc, err := model.Forecast(exogFuture, 6)
//	for _, p := range fc.Points {
//	    fmt.Printf("%s %.0f\n", p.Time.Format("2006-01"), p.Value)
//	}
//
// # Model Selection
//
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n",
//	    model.AIC, model.AICc, model.BIC)
//
// Summary adds standard errors and a Ljung-Box test on the residuals.
package sarimax
