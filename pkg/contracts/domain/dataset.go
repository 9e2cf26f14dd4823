package domain

// DatasetSummary describes a loaded toy dataset
type DatasetSummary struct {
	Name         string         `json:"name"`
	Samples      int            `json:"samples"`
	Features     int            `json:"features"`
	FeatureNames []string       `json:"feature_names"`
	TargetNames  []string       `json:"target_names"`
	ClassCounts  map[string]int `json:"class_counts"`
	Stats        []FeatureStat  `json:"stats,omitempty"`
	Description  string         `json:"description,omitempty"`
}

// FeatureStat summarises one feature column of a dataset
type FeatureStat struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SplitSummary describes a seeded train/test partition of a dataset
type SplitSummary struct {
	Dataset          string         `json:"dataset"`
	Seed             uint64         `json:"seed"`
	TestRatio        float64        `json:"test_ratio"`
	TrainSamples     int            `json:"train_samples"`
	TestSamples      int            `json:"test_samples"`
	TrainClassCounts map[string]int `json:"train_class_counts"`
	TestClassCounts  map[string]int `json:"test_class_counts"`
}
