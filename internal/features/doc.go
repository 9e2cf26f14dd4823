// Package features prepares model inputs from tables: one-hot encoding of
// categorical columns, dictionary vectorization and the feature/target split.
package features
