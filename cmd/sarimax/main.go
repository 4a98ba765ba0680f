// Command sarimax fits a monthly SARIMAX(1,1,1)(1,1,1)[12] model to one
// column of a CSV table and prints forecasts, decompositions, seasonal
// indexes and holdout checks.
//
// Usage:
//
//	sarimax forecast --config configs/nead.yaml --target Julgamentos
//	sarimax decompose --config configs/nead.yaml
//	sarimax index --config configs/nead.yaml --output json
//	sarimax backtest --config configs/nead.yaml --all --holdout 3
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/sartorproj/gosarimax/report"
	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/timeseries"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app carries the flags and the resolved job shared by every subcommand.
type app struct {
	configPath string
	target     string
	steps      int
	holdout    int
	output     string
	locale     string
	logLevel   string
	logFormat  string

	cfg       Config
	logger    *slog.Logger
	formatter *report.Formatter
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "sarimax",
		Short:         "Monthly SARIMAX forecasting",
		Long:          "Fits SARIMAX(1,1,1)(1,1,1)[12] with optional regressors to a monthly CSV column.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to the YAML job file")
	flags.StringVar(&a.target, "target", "", "column to model (overrides default_target)")
	flags.IntVar(&a.steps, "steps", 6, "months to forecast")
	flags.StringVar(&a.output, "output", "text", "output format: text or json")
	flags.StringVar(&a.locale, "locale", "pt-BR", "locale used to format numbers")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	for _, sub := range []*cobra.Command{
		a.newForecastCmd(),
		a.newDecomposeCmd(),
		a.newIndexCmd(),
		a.newBacktestCmd(),
	} {
		sub.PreRunE = func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		}
		root.AddCommand(sub)
	}
	return root
}

// setup resolves the job: defaults, then the config file, then the
// environment, then any flag given on the command line.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target = a.target
	}
	if flags.Changed("steps") {
		cfg.Steps = a.steps
	}
	if flags.Changed("output") {
		cfg.Output = a.output
	}
	if flags.Changed("locale") {
		cfg.Locale = a.locale
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("holdout") {
		cfg.Holdout = a.holdout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}

	a.cfg = cfg
	a.logger = logger
	a.formatter = report.NewFormatter(tag)
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// inputs is the target column of a frame and its configured regressors.
type inputs struct {
	target    string
	exogNames []string
	endog     *timeseries.Series
	exog      *timeseries.Matrix
}

func (a *app) csvOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.DateColumn = a.cfg.DateColumn
	if a.cfg.DateFormat != "" {
		opts.DateFormat = a.cfg.DateFormat
	}
	return opts
}

func (a *app) loadFrame(path string) (*timeseries.Frame, error) {
	frame, err := timeseries.LoadFrameCSV(path, a.csvOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	a.logger.Debug("data loaded", "path", path, "rows", frame.Len(), "columns", frame.Names)
	return frame, nil
}

func (a *app) inputs(frame *timeseries.Frame, target string) (*inputs, error) {
	endog, err := frame.Series(target)
	if err != nil {
		return nil, fmt.Errorf("failed to select target: %w", err)
	}
	names := a.cfg.Exog(target)
	exog, err := frame.Matrix(names...)
	if err != nil {
		return nil, fmt.Errorf("failed to select regressors for %s: %w", target, err)
	}
	return &inputs{target: target, exogNames: names, endog: endog, exog: exog}, nil
}

func (a *app) fit(ctx context.Context, endog *timeseries.Series, exog *timeseries.Matrix) (*sarimax.Model, error) {
	return sarimax.FitContext(ctx, endog, exog,
		sarimax.WithMaxIterations(a.cfg.MaxIterations),
		sarimax.WithGradientTolerance(a.cfg.GradientTolerance),
		sarimax.WithLogger(a.logger.With("target", endog.Name)),
	)
}
