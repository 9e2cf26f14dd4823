// Command inequality derives the top-to-bottom decile income ratio and
// prints it for a set of years and countries.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"featurelab/internal/config"
	"featurelab/internal/exporter"
	"featurelab/internal/inequality"
	"featurelab/internal/infrastructure"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/internal/validation"
	"featurelab/pkg/contracts/domain"
)

type options struct {
	configFile  string
	years       []int
	countries   []string
	preset      string
	listPresets bool
	out         string
}

func parseFlags(args []string) (options, error) {
	var opts options
	var years, countries string

	fs := flag.NewFlagSet("inequality", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to the standard search locations)")
	fs.StringVar(&years, "years", "", "comma separated years to keep")
	fs.StringVar(&countries, "countries", "", "comma separated countries to keep")
	fs.StringVar(&opts.preset, "preset", "", "run a named query instead of -years/-countries")
	fs.BoolVar(&opts.listPresets, "list-presets", false, "list the named queries and exit")
	fs.StringVar(&opts.out, "out", "", "export the report (.csv or .xlsx, relative to data/reports)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	for _, y := range splitList(years) {
		year, err := strconv.Atoi(y)
		if err != nil {
			return opts, fmt.Errorf("invalid year %q", y)
		}
		opts.years = append(opts.years, year)
	}
	opts.countries = splitList(countries)

	if opts.preset != "" && (len(opts.years) > 0 || len(opts.countries) > 0) {
		return opts, fmt.Errorf("-preset cannot be combined with -years or -countries")
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
		logger.ErrorContext(ctx, "inequality report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.LoadFrom(file)
	}
	return config.Load()
}

// run prints one report per query. Without -preset, -years or -countries
// every named query is printed.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts options, stdout io.Writer) error {
	if opts.listPresets {
		return printPresets(stdout)
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateInputFile(cfg.IncomePath()); err != nil {
		return err
	}
	if opts.out != "" {
		if _, err := files.ValidateExportPath(cfg.GetPaths().ReportsDir, opts.out, table.ExtCSV, table.ExtXLSX); err != nil {
			return err
		}
	}

	svc := services.NewInequalityService(cfg, nil, logger)

	var queries []inequality.Preset
	switch {
	case opts.preset != "":
		p, err := inequality.LookupPreset(opts.preset)
		if err != nil {
			return err
		}
		queries = []inequality.Preset{p}
	case len(opts.years) > 0 || len(opts.countries) > 0:
		queries = []inequality.Preset{{
			Name:  "custom",
			Title: "Custom query",
			Query: inequality.Query{Years: opts.years, Countries: opts.countries},
		}}
	default:
		queries = inequality.Presets()
	}

	for i, p := range queries {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		report, err := svc.Report(ctx, p.Query)
		if err != nil {
			return err
		}
		report.Query = p.Name

		fmt.Fprintf(stdout, "== %s (%d rows)\n", p.Title, len(report.Rows))
		if err := printRows(stdout, report.Rows); err != nil {
			return err
		}

		if opts.out != "" {
			path, err := export(ctx, cfg, svc, exportName(opts.out, p.Name, len(queries)), p.Query, report)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "inequality report exported", slog.String("query", p.Name), slog.String("path", path))
			fmt.Fprintf(stdout, "exported %s\n", path)
		}
	}
	return nil
}

func export(ctx context.Context, cfg *config.Config, svc *services.InequalityService, name string, q inequality.Query, report *domain.IncomeReport) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return exporter.NewCSVWriter(cfg.GetPaths()).WriteIncomeReport(name, report)
	}
	t, err := svc.Filtered(ctx, q)
	if err != nil {
		return "", err
	}
	return exporter.ExportTable(cfg.GetPaths(), name, t)
}

// exportName suffixes the query name when several reports share one -out
func exportName(out, query string, total int) string {
	if total == 1 {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + query + ext
}

func printRows(w io.Writer, rows []domain.IncomeRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(exporter.IncomeHeaders, "\t"))
	for _, rec := range exporter.IncomeRecords(rows) {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}

func printPresets(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tyears\tcountries")
	for _, p := range inequality.Presets() {
		years := make([]string, len(p.Query.Years))
		for i, y := range p.Query.Years {
			years[i] = strconv.Itoa(y)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, strings.Join(years, ","), strings.Join(p.Query.Countries, ","))
	}
	return tw.Flush()
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
