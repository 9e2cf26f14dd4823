// Package api contains the request and response contracts of the featurelab
// HTTP API. Version v1 is the current stable API version.
package api

import (
	"featurelab/pkg/contracts/domain"
)

// Dataset API Requests

// SplitRequest asks for a seeded train/test partition of a toy dataset.
// The dataset itself comes from the URL.
type SplitRequest struct {
	TestRatio float64 `json:"test_ratio" validate:"gte=0,lt=1"`
	Seed      *uint64 `json:"seed,omitempty"`
}

// Feature API Requests

// VectorizeRequest carries the records to one-hot encode. Values must be
// strings, numbers, booleans or null.
type VectorizeRequest struct {
	Records []map[string]any `json:"records" validate:"required,min=1,max=10000"`
}

// DummiesQuery controls dummy encoding of an uploaded CSV
type DummiesQuery struct {
	Columns   []string `query:"columns"`
	Separator string   `query:"sep" validate:"omitempty,max=8"`
	DummyNA   bool     `query:"dummy_na"`
	DropFirst bool     `query:"drop_first"`
}

// Inequality API Requests

// InequalityQuery selects income rows by year and country. Empty sets match
// everything.
type InequalityQuery struct {
	Years     []int    `query:"years" validate:"dive,gte=0"`
	Countries []string `query:"countries" validate:"dive,required"`
	Format    string   `query:"format" validate:"omitempty,oneof=json csv"`
}

// Pricing API Requests

// PutQuoteQuery prices a put over a spot grid. Zero grid values fall back
// to the configured grid.
type PutQuoteQuery struct {
	domain.PutParams
	From   float64 `query:"from" validate:"gte=0"`
	To     float64 `query:"to" validate:"gte=0"`
	Step   float64 `query:"step" validate:"gte=0"`
	Format string  `query:"format" validate:"omitempty,oneof=json csv"`
}

// BenchmarkRequest times repeated pricing of the configured grid
type BenchmarkRequest struct {
	Replications int `json:"replications" validate:"gte=0,lte=1000"`
}
