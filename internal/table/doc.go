// Package table wraps gota dataframes with the small set of operations the
// workflows need: loading CSV, gzip CSV and Excel files, schema reports,
// column selection, missing-value removal, membership filters and derived
// ratio columns.
//
// Missing cells are NaN. On load the tokens "", "NA", "NaN" and "<nil>" are
// read as missing. Transformations never modify their receiver.
package table
