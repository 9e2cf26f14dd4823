// Command putpricer prices a European put with the Black-Scholes closed form
// over a grid of spot prices and times repeated pricing of the grid.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"featurelab/internal/config"
	"featurelab/internal/exporter"
	"featurelab/internal/infrastructure"
	"featurelab/internal/pricing"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/internal/validation"
	"featurelab/pkg/contracts/domain"
)

// Contract and grid flags. Unset flags keep the configured value.
var floatFlags = []struct {
	name  string
	usage string
}{
	{"strike", "strike price"},
	{"rate", "risk-free rate"},
	{"yield", "dividend yield"},
	{"maturity", "time to maturity in years"},
	{"sigma", "volatility"},
	{"from", "first spot of the grid"},
	{"to", "last spot of the grid"},
	{"step", "grid spacing"},
}

type options struct {
	configFile string
	overrides  map[string]float64
	at         []float64
	bench      bool
	reps       int
	out        string
	benchLog   string
}

func parseFlags(args []string) (options, error) {
	opts := options{overrides: map[string]float64{}}
	var at string

	fs := flag.NewFlagSet("putpricer", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to the standard search locations)")
	values := make(map[string]*float64, len(floatFlags))
	for _, f := range floatFlags {
		values[f.name] = fs.Float64(f.name, 0, f.usage+" (defaults to the configured value)")
	}
	fs.StringVar(&at, "at", "40,50,55,60,65,70,80", "comma separated spots to print")
	fs.BoolVar(&opts.bench, "bench", true, "time repeated pricing of the whole grid")
	fs.IntVar(&opts.reps, "reps", 0, "benchmark replications (0 uses the default)")
	fs.StringVar(&opts.out, "out", "", "export every quote of the grid (.csv, relative to data/reports)")
	fs.StringVar(&opts.benchLog, "bench-log", "", "append the benchmark timing to a CSV history (relative to data/reports)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		if v, ok := values[f.Name]; ok {
			opts.overrides[f.Name] = *v
		}
	})

	for _, s := range strings.Split(at, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		spot, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid spot %q", s)
		}
		opts.at = append(opts.at, spot)
	}
	if opts.reps < 0 {
		return opts, fmt.Errorf("reps must be non-negative, got %d", opts.reps)
	}
	if opts.benchLog != "" && !opts.bench {
		return opts, fmt.Errorf("-bench-log needs -bench")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureTraceID(context.Background())
	if err := run(ctx, cfg, logger, opts, os.Stdout); err != nil {
		logger.ErrorContext(ctx, "put pricing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.LoadFrom(file)
	}
	return config.Load()
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts options, stdout io.Writer) error {
	svc := services.NewPricingService(cfg, nil, logger)
	params, grid := apply(svc.DefaultParams(), cfg.Workflows.Pricing, opts.overrides)

	if err := pricing.Validate(params); err != nil {
		return err
	}
	files := validation.NewFileValidator(logger)
	for _, name := range []string{opts.out, opts.benchLog} {
		if name == "" {
			continue
		}
		if _, err := files.ValidateExportPath(cfg.GetPaths().ReportsDir, name, table.ExtCSV); err != nil {
			return err
		}
	}

	quotes, err := svc.Quote(ctx, params, grid)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "put K=%g r=%g q=%g T=%g sigma=%g\n",
		params.Strike, params.Rate, params.Yield, params.Maturity, params.Sigma)
	fmt.Fprintf(stdout, "grid %g..%g step %g: %d points\n", grid.From, grid.To, grid.Step, len(quotes))

	if len(opts.at) > 0 {
		sample, err := pricing.Quotes(opts.at, params)
		if err != nil {
			return err
		}
		if err := printQuotes(stdout, sample); err != nil {
			return err
		}
	}

	if opts.bench {
		res, err := svc.Benchmark(ctx, params, grid, opts.reps)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "benchmark: %d replications of %d points in %s (%s per replication)\n",
			res.Replications, res.Points, res.Elapsed, res.PerRep)

		if opts.benchLog != "" {
			path, err := exporter.NewCSVWriter(cfg.GetPaths()).AppendBenchmark(opts.benchLog, time.Now(), params, res)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "benchmark logged", slog.String("path", path))
		}
	}

	if opts.out != "" {
		path, err := exporter.NewCSVWriter(cfg.GetPaths()).WriteQuotes(opts.out, quotes)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "quotes exported", slog.String("path", path), slog.Int("points", len(quotes)))
		fmt.Fprintf(stdout, "exported %s\n", path)
	}
	return nil
}

// apply overlays flag overrides on the configured contract and grid
func apply(params domain.PutParams, cfg config.PricingConfig, overrides map[string]float64) (domain.PutParams, services.GridRequest) {
	grid := services.GridRequest{From: cfg.GridFrom, To: cfg.GridTo, Step: cfg.GridStep}
	targets := map[string]*float64{
		"strike":   &params.Strike,
		"rate":     &params.Rate,
		"yield":    &params.Yield,
		"maturity": &params.Maturity,
		"sigma":    &params.Sigma,
		"from":     &grid.From,
		"to":       &grid.To,
		"step":     &grid.Step,
	}
	for name, v := range overrides {
		if dst, ok := targets[name]; ok {
			*dst = v
		}
	}
	return params, grid
}

func printQuotes(w io.Writer, quotes []domain.PutQuote) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "spot\tprice\t")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%g\t%.6f\t\n", q.Spot, q.Price)
	}
	return tw.Flush()
}
