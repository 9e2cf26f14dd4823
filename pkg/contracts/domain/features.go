package domain

// PreparedFeatures is the result of the feature preparation workflow
type PreparedFeatures struct {
	Source       string              `json:"source"`
	Target       string              `json:"target"`
	FeatureNames []string            `json:"feature_names"`
	Samples      int                 `json:"samples"`
	Positives    int                 `json:"positives"`
	Steps        []StepReport        `json:"steps"`
	Holdout      *TableInfo          `json:"holdout,omitempty"`
	UnseenLevels map[string][]string `json:"unseen_levels,omitempty"` // holdout levels absent from training
}

// VectorizedRecords is the output of dictionary vectorization
type VectorizedRecords struct {
	FeatureNames []string    `json:"feature_names"`
	Matrix       [][]float64 `json:"matrix"`
}
