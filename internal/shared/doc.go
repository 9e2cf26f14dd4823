// Package shared provides test helpers used across the featurelab packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on log output
//	- Sample Titanic, income and digits files written into t.TempDir()
//	- Excel workbook fixtures built with excelize
//
// testutil must not import other featurelab packages so any package can
// use it from its tests.
package shared
