package exporter

import (
	"fmt"

	"featurelab/internal/config"
	"featurelab/internal/table"
)

// ExportTable writes t as a workbook when filePath ends in .xlsx and as a
// BOM-prefixed CSV when it ends in .csv. Relative paths land in the
// reports directory.
func ExportTable(paths *config.Paths, filePath string, t *table.Table) (string, error) {
	switch table.Format(filePath) {
	case table.ExtXLSX:
		return NewXLSXWriter(paths).WriteTable(filePath, "", t)
	case table.ExtCSV:
		return NewCSVWriter(paths).WriteTable(filePath, t, true)
	default:
		return "", fmt.Errorf("unsupported export format for %q: use .csv or .xlsx", filePath)
	}
}
