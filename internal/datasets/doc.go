// Package datasets provides the toy datasets: the bundled iris
// measurements and 8x8 digit images. Digits come from a file when one is
// configured or present in the datasets directory, otherwise from the
// synthetic glyphs bundled with the binary.
//
// A Bunch carries a gonum matrix of features alongside integer class
// labels, and can be summarised, split deterministically or rendered as a
// table for the rest of the pipeline.
package datasets
