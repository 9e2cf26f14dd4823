// Package inequality computes the decile income ratio (the 10th decile
// income divided by the 1st) for country-year observations and filters them
// by year and country.
package inequality
