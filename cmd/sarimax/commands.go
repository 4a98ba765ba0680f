package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/gosarimax/report"
	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/stats"
	"github.com/sartorproj/gosarimax/timeseries"
)

func (a *app) newForecastCmd() *cobra.Command {
	var exogFuture string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit the target column and forecast the following months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			frame, err := a.loadFrame(a.cfg.DataPath)
			if err != nil {
				return err
			}
			in, err := a.inputs(frame, a.cfg.Target)
			if err != nil {
				return err
			}
			future, err := a.futureExog(in, exogFuture)
			if err != nil {
				return err
			}

			var (
				model    *sarimax.Model
				forecast *sarimax.Forecast
				dec      *stats.DecompositionResult
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				m, err := a.fit(ctx, in.endog, in.exog)
				if err != nil {
					return fmt.Errorf("failed to fit %s: %w", in.target, err)
				}
				f, err := m.Forecast(future, a.cfg.Steps)
				if err != nil {
					return fmt.Errorf("failed to forecast %s: %w", in.target, err)
				}
				model, forecast = m, f
				return nil
			})
			g.Go(func() error {
				d, err := a.decompose(in.endog)
				if err != nil {
					a.logger.Warn("trend not available", "target", in.target, "error", err)
					return nil
				}
				dec = d
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			a.logger.Info("forecast ready",
				"target", in.target,
				"steps", forecast.Len(),
				"aic", model.AIC,
				"status", model.Status)
			return a.render(cmd.OutOrStdout(), newForecastResult(in, model, forecast, dec))
		},
	}

	cmd.Flags().StringVar(&exogFuture, "exog-future", "",
		"CSV with future regressor values; defaults to the last observed rows")
	return cmd
}

// futureExog returns the regressor rows for the forecast horizon. Without an
// explicit file the last observed rows are reused, one per forecast month.
func (a *app) futureExog(in *inputs, path string) (*timeseries.Matrix, error) {
	if len(in.exogNames) == 0 {
		if path != "" {
			a.logger.Warn("target has no regressors, ignoring future values", "target", in.target, "path", path)
		}
		return nil, nil
	}

	steps := a.cfg.Steps
	if path != "" {
		frame, err := a.loadFrame(path)
		if err != nil {
			return nil, err
		}
		future, err := frame.Matrix(in.exogNames...)
		if err != nil {
			return nil, fmt.Errorf("failed to select future regressors: %w", err)
		}
		if future.Len() > steps {
			future = future.Slice(0, steps)
		}
		return future, nil
	}

	if steps > in.exog.Len() {
		return nil, fmt.Errorf("cannot reuse %d observed regressor rows for %d forecast months, pass --exog-future",
			in.exog.Len(), steps)
	}
	a.logger.Debug("reusing last observed regressor rows", "target", in.target, "rows", steps)
	return in.exog.Tail(steps), nil
}

func (a *app) decompose(series *timeseries.Series) (*stats.DecompositionResult, error) {
	return stats.DecomposeWithOptions(series, a.cfg.Period, stats.DecomposeOptions{
		FillTrendEdges: a.cfg.FillTrendEdges,
	})
}

// writeComponents saves a decomposition as a dated CSV table.
func writeComponents(path string, dec *stats.DecompositionResult) error {
	frame := &timeseries.Frame{
		Timestamps: dec.Observed.Timestamps,
		Names:      []string{"observed", "trend", "seasonal", "residual"},
		Columns: map[string][]float64{
			"observed": dec.Observed.Values,
			"trend":    dec.Trend.Values,
			"seasonal": dec.Seasonal.Values,
			"residual": dec.Residual.Values,
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := timeseries.WriteFrameCSV(f, frame); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) newDecomposeCmd() *cobra.Command {
	var (
		noFill  bool
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Split the target column into trend, seasonal and residual components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noFill {
				a.cfg.FillTrendEdges = false
			}
			frame, err := a.loadFrame(a.cfg.DataPath)
			if err != nil {
				return err
			}
			series, err := frame.Series(a.cfg.Target)
			if err != nil {
				return fmt.Errorf("failed to select target: %w", err)
			}
			dec, err := a.decompose(series)
			if err != nil {
				return fmt.Errorf("failed to decompose %s: %w", a.cfg.Target, err)
			}
			if csvPath != "" {
				if err := writeComponents(csvPath, dec); err != nil {
					return fmt.Errorf("failed to write %s: %w", csvPath, err)
				}
				a.logger.Info("components written", "target", a.cfg.Target, "path", csvPath)
			}
			return a.render(cmd.OutOrStdout(), newDecomposeResult(a.cfg.Target, dec))
		},
	}

	cmd.Flags().BoolVar(&noFill, "no-fill", false, "leave the trend undefined at both ends")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the components to this CSV file")
	return cmd
}

func (a *app) newIndexCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Print the seasonal index of each calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			frame, err := a.loadFrame(a.cfg.DataPath)
			if err != nil {
				return err
			}
			series, err := frame.Series(a.cfg.Target)
			if err != nil {
				return fmt.Errorf("failed to select target: %w", err)
			}
			idx, err := stats.SeasonalIndex(series)
			if err != nil {
				return fmt.Errorf("failed to index %s: %w", a.cfg.Target, err)
			}
			if strict {
				if err := idx.Require(); err != nil {
					return fmt.Errorf("failed to index %s: %w", a.cfg.Target, err)
				}
			} else if missing := idx.Missing(); len(missing) > 0 {
				a.logger.Warn("months without observations", "target", a.cfg.Target, "months", missing)
			}
			return a.render(cmd.OutOrStdout(), newIndexResult(a.cfg.Target, idx))
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a calendar month has no observations")
	return cmd
}

func (a *app) newBacktestCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Hold out the last months, refit and compare the forecast with what was observed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			frame, err := a.loadFrame(a.cfg.DataPath)
			if err != nil {
				return err
			}

			targets := []string{a.cfg.Target}
			if all {
				targets = a.cfg.TargetNames()
				if len(targets) == 0 {
					return fmt.Errorf("no targets configured")
				}
			}

			results := make([]backtestResult, len(targets))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, target := range targets {
				i, target := i, target
				g.Go(func() error {
					in, err := a.inputs(frame, target)
					if err != nil {
						return err
					}
					res, err := a.backtest(ctx, in)
					if err != nil {
						return err
					}
					results[i] = *res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), backtestResults(results))
		},
	}

	cmd.Flags().IntVar(&a.holdout, "holdout", 1, "months held out of the fit")
	cmd.Flags().BoolVar(&all, "all", false, "backtest every configured target")
	return cmd
}

// backtest fits the model without the last Holdout months and forecasts
// them from the regressor values that were actually observed.
func (a *app) backtest(ctx context.Context, in *inputs) (*backtestResult, error) {
	n, h := in.endog.Len(), a.cfg.Holdout
	if h >= n {
		return nil, fmt.Errorf("holdout of %d months leaves nothing to fit %s", h, in.target)
	}

	train, test := in.endog.Slice(0, n-h), in.endog.Slice(n-h, n)
	var trainExog, testExog *timeseries.Matrix
	if in.exog != nil {
		trainExog, testExog = in.exog.Slice(0, n-h), in.exog.Slice(n-h, n)
	}

	model, err := a.fit(ctx, train, trainExog)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", in.target, err)
	}
	forecast, err := model.Forecast(testExog, h)
	if err != nil {
		return nil, fmt.Errorf("failed to forecast %s: %w", in.target, err)
	}

	rmse, mae, mape := metrics(test.Values, forecast.Values())
	a.logger.Info("backtest done", "target", in.target, "holdout", h, "rmse", rmse, "mape", mape)

	return &backtestResult{
		Target: in.target,
		Model:  model.Order.String(),
		Exog:   in.exogNames,
		Checks: report.Compare(test, forecast.Series()),
		RMSE:   rmse,
		MAE:    mae,
		MAPE:   mape,
	}, nil
}
