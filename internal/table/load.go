package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"featurelab/internal/config"
	"featurelab/internal/errors"
)

// LoadOptions controls how a table is read
type LoadOptions struct {
	// SkipRows discards this many physical lines (or sheet rows) before the header
	SkipRows int
	// Sheet selects the worksheet of an .xlsx file; empty means the first sheet
	Sheet string
	// MissingTokens are read as missing values; nil means "", NA, NaN and <nil>
	MissingTokens []string
	// Types forces the type of named columns instead of detecting it
	Types map[string]series.Type
}

// Supported file extensions
const (
	ExtCSV   = ".csv"
	ExtCSVGz = ".csv.gz"
	ExtXLSX  = ".xlsx"
)

// Format returns the supported extension of path, or "" when unsupported
func Format(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ExtCSVGz):
		return ExtCSVGz
	case strings.HasSuffix(lower, ExtCSV):
		return ExtCSV
	case strings.HasSuffix(lower, ExtXLSX):
		return ExtXLSX
	default:
		return ""
	}
}

// LoadCSV parses a CSV with a header row, detecting int, float, bool and
// string columns
func LoadCSV(r io.Reader, opts LoadOptions) (*Table, error) {
	if opts.SkipRows < 0 {
		return nil, errors.NewAppValidationError("skip rows must not be negative")
	}

	br := bufio.NewReader(r)
	if err := skipLines(br, opts.SkipRows); err != nil {
		return nil, err
	}

	df := dataframe.ReadCSV(br, readOptions(opts)...)
	if df.Err != nil {
		return nil, errors.NewParsingError("failed to parse CSV", df.Err)
	}
	return &Table{df: df}, nil
}

// LoadRecords builds a table from a header row followed by data rows
func LoadRecords(records [][]string, opts LoadOptions) (*Table, error) {
	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(records) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("cannot skip %d rows of %d", opts.SkipRows, len(records)), nil)
		}
		records = records[opts.SkipRows:]
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("no header row", nil)
	}

	df := dataframe.LoadRecords(records, readOptions(opts)...)
	if df.Err != nil {
		return nil, errors.NewParsingError("failed to load records", df.Err)
	}
	return &Table{df: df}, nil
}

// LoadFile opens path by extension: .csv, .csv.gz or .xlsx
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file " + path).WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to stat "+path, err)
	}

	var (
		t   *Table
		err error
	)
	switch Format(path) {
	case ExtCSV:
		t, err = loadCSVFile(path, opts, false)
	case ExtCSVGz:
		t, err = loadCSVFile(path, opts, true)
	case ExtXLSX:
		t, err = loadXLSX(path, opts)
	default:
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("unsupported file type %q", filepath.Ext(path))).WithContext("path", path)
	}

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

func loadCSVFile(path string, opts LoadOptions, compressed bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open "+path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewParsingError("invalid gzip stream", err)
		}
		defer zr.Close()
		r = zr
	}

	return LoadCSV(r, opts)
}

func loadXLSX(path string, opts LoadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	if opts.SkipRows >= len(rows) {
		return nil, errors.NewParsingError(fmt.Sprintf("sheet %q has no header row", sheet), nil)
	}
	rows = rows[opts.SkipRows:]

	// excelize trims trailing empty cells, so pad every row to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}

	opts.SkipRows = 0
	return LoadRecords(rows, opts)
}

// skipLines discards n newline-terminated lines
func skipLines(br *bufio.Reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return errors.NewParsingError(fmt.Sprintf("input ended after %d of %d skipped rows", i, n), nil)
			}
			return errors.NewStorageError("failed to read input", err)
		}
	}
	return nil
}

func readOptions(opts LoadOptions) []dataframe.LoadOption {
	tokens := opts.MissingTokens
	if tokens == nil {
		tokens = config.MissingTokens()
	}

	o := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(tokens),
	}
	if len(opts.Types) > 0 {
		o = append(o, dataframe.WithTypes(opts.Types))
	}
	return o
}
