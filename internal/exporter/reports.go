package exporter

import (
	"strconv"
	"time"

	"featurelab/internal/config"
	"featurelab/internal/inequality"
	"featurelab/internal/pricing"
	"featurelab/pkg/contracts/domain"
)

// Report headers
var (
	IncomeHeaders = []string{inequality.ColumnCountry, inequality.ColumnYear,
		inequality.ColumnDecile1, inequality.ColumnDecile10, inequality.ColumnRatio}
	QuoteHeaders     = []string{"spot", "price"}
	BenchmarkHeaders = []string{"timestamp", "strike", "rate", "yield", "maturity", "sigma",
		"points", "replications", "elapsed_ns", "per_replication_ns"}
)

// IncomeRecords renders income rows as CSV records
func IncomeRecords(rows []domain.IncomeRow) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Country,
			formatInt(r.Year),
			formatFloat(r.Decile1),
			formatFloat(r.Decile10),
			formatFloat(r.InequalityRatio),
		}
	}
	return records
}

// QuoteRecord renders a single put quote
func QuoteRecord(q domain.PutQuote) []string {
	return []string{formatFloat(q.Spot), formatFloat(q.Price)}
}

// WriteIncomeReport exports an inequality report
func (w *CSVWriter) WriteIncomeReport(filePath string, report *domain.IncomeReport) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   IncomeHeaders,
		Records:   IncomeRecords(report.Rows),
		BOMPrefix: true,
	})
}

// WriteQuotes streams put quotes to filePath
func (w *CSVWriter) WriteQuotes(filePath string, quotes []domain.PutQuote) (string, error) {
	sw, err := w.CreateStreamWriter(filePath, QuoteHeaders)
	if err != nil {
		return "", err
	}
	for _, q := range quotes {
		if err := sw.WriteRecord(QuoteRecord(q)); err != nil {
			sw.Close()
			return "", err
		}
	}
	return sw.Path(), sw.Close()
}

// BenchmarkRecord renders one benchmark run
func BenchmarkRecord(at time.Time, p domain.PutParams, res pricing.BenchmarkResult) []string {
	return []string{
		at.UTC().Format(time.RFC3339),
		formatFloat(p.Strike),
		formatFloat(p.Rate),
		formatFloat(p.Yield),
		formatFloat(p.Maturity),
		formatFloat(p.Sigma),
		formatInt(res.Points),
		formatInt(res.Replications),
		strconv.FormatInt(res.Elapsed.Nanoseconds(), 10),
		strconv.FormatInt(res.PerRep.Nanoseconds(), 10),
	}
}

// AppendBenchmark adds a benchmark run to a CSV history, writing the header
// first when the file does not exist yet
func (w *CSVWriter) AppendBenchmark(filePath string, at time.Time, p domain.PutParams, res pricing.BenchmarkResult) (string, error) {
	records := [][]string{BenchmarkRecord(at, p, res)}
	if !config.FileExists(w.resolvePath(filePath)) {
		return w.WriteCSV(filePath, WriteOptions{Headers: BenchmarkHeaders, Records: records})
	}
	return w.AppendToCSV(filePath, records)
}
