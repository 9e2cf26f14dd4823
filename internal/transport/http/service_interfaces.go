package http

import (
	"context"

	"featurelab/internal/datasets"
	"featurelab/internal/features"
	"featurelab/internal/files"
	"featurelab/internal/inequality"
	"featurelab/internal/pricing"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/pkg/contracts"
	"featurelab/pkg/contracts/domain"
)

// DatasetServiceInterface defines the toy dataset operations
type DatasetServiceInterface interface {
	Names() []string
	Describe(ctx context.Context, name string) (domain.DatasetSummary, error)
	Split(ctx context.Context, req services.SplitRequest) (train, test *datasets.Bunch, summary domain.SplitSummary, err error)
}

// FeatureServiceInterface defines the encoding operations
type FeatureServiceInterface interface {
	Encode(ctx context.Context, t *table.Table, opts features.DummyOptions) (*table.Table, error)
	Vectorize(ctx context.Context, records []map[string]any) (*domain.VectorizedRecords, error)
}

// InequalityServiceInterface defines the income inequality queries
type InequalityServiceInterface interface {
	Report(ctx context.Context, q inequality.Query) (*domain.IncomeReport, error)
	Preset(ctx context.Context, name string) (*domain.IncomeReport, error)
}

// PricingServiceInterface defines the option pricing operations
type PricingServiceInterface interface {
	DefaultParams() domain.PutParams
	Quote(ctx context.Context, params domain.PutParams, grid services.GridRequest) ([]domain.PutQuote, error)
	Benchmark(ctx context.Context, params domain.PutParams, grid services.GridRequest, reps int) (pricing.BenchmarkResult, error)
}

// HealthServiceInterface defines the liveness and readiness checks
type HealthServiceInterface interface {
	LivenessCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	Version() contracts.VersionInfo
}

// FileLister lists the data files below the data directory
type FileLister interface {
	FindAll() ([]files.FileInfo, error)
}
