package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"featurelab/internal/config"
	"featurelab/internal/datasets"
	"featurelab/internal/infrastructure"
	"featurelab/pkg/contracts/domain"
)

// SplitRequest asks for a seeded train/test partition of a dataset. A nil
// Seed or zero TestRatio uses the configured default.
type SplitRequest struct {
	Dataset   string  `json:"dataset" validate:"required"`
	TestRatio float64 `json:"test_ratio" validate:"gte=0,lt=1"`
	Seed      *uint64 `json:"seed,omitempty"`
}

// DatasetService loads and summarises the toy datasets
type DatasetService struct {
	cfg     *config.Config
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewDatasetService creates a dataset service. metrics may be nil.
func NewDatasetService(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "dataset_service"),
	}
}

// Names lists the available datasets
func (s *DatasetService) Names() []string {
	return datasets.Names()
}

// Load returns the named dataset. Digits come from the configured file
// when one is set, otherwise from the datasets directory.
func (s *DatasetService) Load(ctx context.Context, name string) (*datasets.Bunch, error) {
	return traced(ctx, s.logger, "datasets.load", func(context.Context) (*datasets.Bunch, error) {
		if name == config.DatasetDigits && s.cfg.Workflows.Datasets.DigitsFile != "" {
			return datasets.LoadDigits(s.cfg.DigitsPath())
		}
		return datasets.Load(name, s.cfg.GetPaths().DatasetsDir)
	})
}

// Describe loads a dataset and summarises it
func (s *DatasetService) Describe(ctx context.Context, name string) (summary domain.DatasetSummary, err error) {
	ctx, span := infrastructure.StartSpan(ctx, "datasets.describe", attribute.String("dataset", name))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() { s.metrics.RecordWorkflow(ctx, WorkflowDatasets, rows, time.Since(start), err) }()

	b, err := s.Load(ctx, name)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	rows = b.Samples()

	summary = b.Summary()
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset", name),
		slog.Int("samples", summary.Samples),
		slog.Int("features", summary.Features),
		slog.Any("class_counts", summary.ClassCounts))
	return summary, nil
}

// Split partitions a dataset into seeded train and test sides
func (s *DatasetService) Split(ctx context.Context, req SplitRequest) (train, test *datasets.Bunch, summary domain.SplitSummary, err error) {
	if err = validateRequest(req); err != nil {
		return nil, nil, summary, err
	}

	ratio := req.TestRatio
	if ratio == 0 {
		ratio = s.cfg.Workflows.Datasets.TestRatio
	}
	seed := s.cfg.Workflows.Datasets.SplitSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	ctx, span := infrastructure.StartSpan(ctx, "datasets.split",
		attribute.String("dataset", req.Dataset),
		attribute.Float64("test_ratio", ratio),
		attribute.Int64("seed", int64(seed)))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() { s.metrics.RecordWorkflow(ctx, WorkflowDatasets, rows, time.Since(start), err) }()

	b, err := s.Load(ctx, req.Dataset)
	if err != nil {
		return nil, nil, summary, err
	}
	rows = b.Samples()

	train, test, err = datasets.TrainTestSplit(b, ratio, seed)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, nil, summary, err
	}

	summary = domain.SplitSummary{
		Dataset:          req.Dataset,
		Seed:             seed,
		TestRatio:        ratio,
		TrainSamples:     train.Samples(),
		TestSamples:      test.Samples(),
		TrainClassCounts: train.ClassCounts(),
		TestClassCounts:  test.ClassCounts(),
	}
	s.logger.InfoContext(ctx, "dataset split",
		slog.String("dataset", req.Dataset),
		slog.Int("train", summary.TrainSamples),
		slog.Int("test", summary.TestSamples),
		slog.Uint64("seed", seed))
	return train, test, summary, nil
}
