// Package exporter writes workflow results to disk.
//
// CSVWriter writes tables and reports as CSV, optionally with a UTF-8 BOM
// so spreadsheet tools pick the right encoding, and can stream large
// outputs such as price grids record by record. XLSXWriter stores a table
// as a single-sheet workbook with numeric cells kept numeric.
//
// Relative paths are resolved against the reports directory:
//
//	w := exporter.NewCSVWriter(cfg.GetPaths())
//	path, err := w.WriteTable("titanic_features.csv", encoded, true)
package exporter
