package api

import (
	"featurelab/pkg/contracts/domain"
)

// DatasetListResponse lists the toy datasets that can be loaded
type DatasetListResponse struct {
	Datasets []string `json:"datasets"`
}

// SplitResponse reports a train/test partition
type SplitResponse struct {
	domain.SplitSummary
}

// PresetListResponse lists the named inequality queries
type PresetListResponse struct {
	Presets []PresetInfo `json:"presets"`
}

// PresetInfo describes one named inequality query
type PresetInfo struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Years     []int    `json:"years,omitempty"`
	Countries []string `json:"countries,omitempty"`
}

// PutQuoteResponse carries the contract and its prices over the grid
type PutQuoteResponse struct {
	Params domain.PutParams  `json:"params"`
	Points int               `json:"points"`
	Quotes []domain.PutQuote `json:"quotes"`
}

// BenchmarkResponse reports a pricing benchmark
type BenchmarkResponse struct {
	Points        int     `json:"points"`
	Replications  int     `json:"replications"`
	ElapsedMillis float64 `json:"elapsed_ms"`
	PerRepMillis  float64 `json:"per_replication_ms"`
}
