package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"featurelab/internal/config"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

const defaultSheet = "Sheet1"

// XLSXWriter exports tables as single-sheet workbooks
type XLSXWriter struct {
	paths *config.Paths
}

// NewXLSXWriter creates a workbook writer rooted at the reports directory
func NewXLSXWriter(paths *config.Paths) *XLSXWriter {
	return &XLSXWriter{paths: paths}
}

// WriteTable writes t to sheet of a new workbook at filePath. Numeric
// columns are stored as numbers and missing cells are left empty.
func (w *XLSXWriter) WriteTable(filePath, sheet string, t *table.Table) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.GetReportPath(filePath)
	}
	if sheet == "" {
		sheet = defaultSheet
	}

	slog.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.String("sheet", sheet),
		slog.Int("record_count", t.Nrow()))

	columns, err := cellColumns(t)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return "", fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to open sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.Nrow(); i++ {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), config.DirPermissions); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return fullPath, nil
}

// cellColumns converts every column to typed cell values
func cellColumns(t *table.Table) ([][]interface{}, error) {
	names := t.Names()
	out := make([][]interface{}, len(names))

	for j, name := range names {
		typ, err := t.ColumnType(name)
		if err != nil {
			return nil, err
		}
		missing, err := t.Missing(name)
		if err != nil {
			return nil, err
		}

		cells := make([]interface{}, t.Nrow())
		switch typ {
		case domain.ColumnInt, domain.ColumnFloat:
			values, err := t.Float(name)
			if err != nil {
				return nil, err
			}
			for i, v := range values {
				if !missing[i] && isFinite(v) {
					cells[i] = v
				}
			}
		default:
			values, err := t.Strings(name)
			if err != nil {
				return nil, err
			}
			for i, v := range values {
				if !missing[i] {
					cells[i] = v
				}
			}
		}
		out[j] = cells
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
