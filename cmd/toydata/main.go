// Command toydata loads the iris and digits datasets, prints their shape,
// class balance and feature statistics and optionally a seeded split.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"featurelab/internal/config"
	"featurelab/internal/datasets"
	"featurelab/internal/exporter"
	"featurelab/internal/infrastructure"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/internal/validation"
	"featurelab/pkg/contracts/domain"
)

type options struct {
	configFile string
	dataset    string
	split      bool
	testRatio  float64
	seed       int64
	out        string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("toydata", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to the standard search locations)")
	fs.StringVar(&opts.dataset, "dataset", "all", "dataset to load: "+strings.Join(append(datasets.Names(), "all"), ", "))
	fs.BoolVar(&opts.split, "split", false, "also print a seeded train/test split")
	fs.Float64Var(&opts.testRatio, "test-ratio", 0, "test share of the split (0 uses the configured ratio)")
	fs.Int64Var(&opts.seed, "seed", -1, "split seed (negative uses the configured seed)")
	fs.StringVar(&opts.out, "out", "", "export the dataset frame (.csv or .xlsx); requires a single dataset")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.dataset = strings.ToLower(opts.dataset)
	if opts.dataset != "all" && !slices.Contains(datasets.Names(), opts.dataset) {
		return opts, fmt.Errorf("unknown dataset %q", opts.dataset)
	}
	if opts.out != "" && opts.dataset == "all" {
		return opts, fmt.Errorf("-out needs a single -dataset")
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
		logger.ErrorContext(ctx, "toy dataset run failed", slog.String("error", err.Error()))
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
	svc := services.NewDatasetService(cfg, nil, logger)
	files := validation.NewFileValidator(logger)

	names := svc.Names()
	if opts.dataset != "all" {
		names = []string{opts.dataset}
	}
	if cfg.Workflows.Datasets.DigitsFile != "" && slices.Contains(names, config.DatasetDigits) {
		if err := files.ValidateInputFile(cfg.DigitsPath()); err != nil {
			return err
		}
	}
	if opts.out != "" {
		if _, err := files.ValidateExportPath(cfg.GetPaths().ReportsDir, opts.out, table.ExtCSV, table.ExtXLSX); err != nil {
			return err
		}
	}

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(stdout)
		}

		summary, err := svc.Describe(ctx, name)
		if err != nil {
			return err
		}
		if err := printSummary(stdout, summary); err != nil {
			return err
		}

		if opts.split {
			req := services.SplitRequest{Dataset: name, TestRatio: opts.testRatio}
			if opts.seed >= 0 {
				seed := uint64(opts.seed)
				req.Seed = &seed
			}
			_, _, split, err := svc.Split(ctx, req)
			if err != nil {
				return err
			}
			printSplit(stdout, split)
		}
	}

	if opts.out != "" {
		b, err := svc.Load(ctx, opts.dataset)
		if err != nil {
			return err
		}
		frame, err := b.Frame()
		if err != nil {
			return err
		}
		path, err := exporter.ExportTable(cfg.GetPaths(), opts.out, frame)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "dataset exported", slog.String("dataset", opts.dataset), slog.String("path", path))
		fmt.Fprintf(stdout, "\nexported %s\n", path)
	}
	return nil
}

func printSummary(w io.Writer, s domain.DatasetSummary) error {
	fmt.Fprintf(w, "== %s: %d samples x %d features\n", s.Name, s.Samples, s.Features)
	fmt.Fprintf(w, "classes: %s\n", formatCounts(s.ClassCounts, s.TargetNames))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "feature\tmean\tstd\tmin\tmax\t")
	for _, st := range s.Stats {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t\n", st.Name, st.Mean, st.Std, st.Min, st.Max)
	}
	return tw.Flush()
}

func printSplit(w io.Writer, s domain.SplitSummary) {
	fmt.Fprintf(w, "split (seed %d, test ratio %.2f): train %d [%s], test %d [%s]\n",
		s.Seed, s.TestRatio,
		s.TrainSamples, formatCounts(s.TrainClassCounts, nil),
		s.TestSamples, formatCounts(s.TestClassCounts, nil))
}

// formatCounts lists counts in order, falling back to sorted keys for
// classes missing from order
func formatCounts(counts map[string]int, order []string) string {
	keys := make([]string, 0, len(counts))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := counts[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range counts {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
