// Command featureprep cleans the Titanic training file and splits it into a
// feature matrix and the survival target.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"featurelab/internal/config"
	"featurelab/internal/exporter"
	"featurelab/internal/infrastructure"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/internal/validation"
)

type options struct {
	configFile string
	train      string
	test       string
	target     string
	drop       string
	dummyNA    bool
	dropFirst  bool
	head       int
	out        string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("featureprep", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to the standard search locations)")
	fs.StringVar(&opts.train, "train", "", "training CSV (defaults to data/general/titanic_train.csv)")
	fs.StringVar(&opts.test, "test", "", "optional test CSV cleaned with the same steps")
	fs.StringVar(&opts.target, "target", "", "target column (defaults to the configured target)")
	fs.StringVar(&opts.drop, "drop", "", "comma separated columns to drop (defaults to the configured list)")
	fs.BoolVar(&opts.dummyNA, "dummy-na", false, "add an indicator column for missing levels")
	fs.BoolVar(&opts.dropFirst, "drop-first", false, "drop the first level of every encoded column")
	fs.IntVar(&opts.head, "head", 5, "rows of the encoded table to print")
	fs.StringVar(&opts.out, "out", "", "export the encoded table (.csv or .xlsx, relative to data/reports)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.head < 0 {
		return opts, fmt.Errorf("head must be non-negative, got %d", opts.head)
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
		logger.ErrorContext(ctx, "feature preparation failed", slog.String("error", err.Error()))
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
	svc := services.NewFeatureService(cfg, nil, logger)
	files := validation.NewFileValidator(logger)

	train := opts.train
	if train == "" {
		train = cfg.TitanicTrainPath()
	}
	if err := files.ValidateInputFiles(train, opts.test); err != nil {
		return err
	}
	if opts.out != "" {
		if _, err := files.ValidateExportPath(cfg.GetPaths().ReportsDir, opts.out, table.ExtCSV, table.ExtXLSX); err != nil {
			return err
		}
	}

	req := services.PrepareRequest{
		TrainPath: train,
		TestPath:  opts.test,
		Target:    opts.target,
		DummyNA:   opts.dummyNA,
		DropFirst: opts.dropFirst,
	}
	if opts.drop != "" {
		req.DropColumns = splitList(opts.drop)
	}

	res, err := svc.Prepare(ctx, req)
	if err != nil {
		return err
	}

	for _, step := range res.Report.Steps {
		fmt.Fprintf(stdout, "== %s\n", step.Step)
		if err := exporter.WriteInfo(stdout, step.Info); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}

	if opts.head > 0 {
		head, err := res.Encoded.Head(opts.head)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, head)
	}

	rows, cols := res.Split.X.Dims()
	fmt.Fprintf(stdout, "X: %d x %d\n", rows, cols)
	fmt.Fprintf(stdout, "y: %d (%s, %d positive)\n", len(res.Split.Y), res.Split.Target, res.Split.Positives())
	fmt.Fprintf(stdout, "features: %s\n", strings.Join(res.Split.FeatureNames, ", "))

	if res.Report.Holdout != nil {
		fmt.Fprintln(stdout, "\n== holdout")
		if err := exporter.WriteInfo(stdout, *res.Report.Holdout); err != nil {
			return err
		}
		cols := make([]string, 0, len(res.Report.UnseenLevels))
		for col := range res.Report.UnseenLevels {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			fmt.Fprintf(stdout, "unseen in train: %s=%s\n", col, strings.Join(res.Report.UnseenLevels[col], ","))
		}
	}

	if opts.out != "" {
		path, err := exporter.ExportTable(cfg.GetPaths(), opts.out, res.Encoded)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "encoded table exported", slog.String("path", path))
		fmt.Fprintf(stdout, "\nexported %s\n", path)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
