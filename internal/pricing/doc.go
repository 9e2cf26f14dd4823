// Package pricing evaluates the Black-Scholes price of a European put with a
// continuous dividend yield over a grid of spot prices.
package pricing
