package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/features"
	"featurelab/internal/infrastructure"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// PrepareRequest configures one run of the feature preparation workflow.
// Empty fields fall back to the workflow configuration.
type PrepareRequest struct {
	TrainPath   string
	TestPath    string
	DropColumns []string
	Target      string
	DummyNA     bool
	DropFirst   bool
}

// PrepareResult holds the prepared training data and its report
type PrepareResult struct {
	Report  domain.PreparedFeatures
	Encoded *table.Table
	Split   *features.Split
	Holdout *table.Table
}

// FeatureService runs the feature preparation workflow: drop unused
// columns, drop incomplete rows, one-hot encode and split off the target.
type FeatureService struct {
	cfg     *config.Config
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewFeatureService creates a feature service. metrics may be nil.
func NewFeatureService(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *FeatureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureService{
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "feature_service"),
	}
}

// Prepare loads the training file, and the test file when given,
// concurrently and runs both through the same cleaning steps.
func (s *FeatureService) Prepare(ctx context.Context, req PrepareRequest) (result *PrepareResult, err error) {
	req = s.withDefaults(req)

	ctx, span := infrastructure.StartSpan(ctx, "features.prepare",
		attribute.String("train_path", req.TrainPath),
		attribute.String("target", req.Target))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		s.metrics.RecordWorkflow(ctx, WorkflowFeatures, rows, time.Since(start), err)
	}()

	s.logger.InfoContext(ctx, "preparing features",
		slog.String("train_path", req.TrainPath),
		slog.String("test_path", req.TestPath),
		slog.Any("drop_columns", req.DropColumns),
		slog.String("target", req.Target))

	var train, test *table.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		train, err = traced(gctx, s.logger, "features.load_train", func(context.Context) (*table.Table, error) {
			return table.LoadFile(req.TrainPath, table.LoadOptions{})
		})
		return err
	})
	if req.TestPath != "" {
		g.Go(func() error {
			var err error
			test, err = traced(gctx, s.logger, "features.load_test", func(context.Context) (*table.Table, error) {
				return table.LoadFile(req.TestPath, table.LoadOptions{})
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rows = train.Nrow()

	encoded, levels, steps, err := s.clean(ctx, "train", train, req, nil)
	if err != nil {
		return nil, err
	}

	split, err := traced(ctx, s.logger, "features.split_target", func(context.Context) (*features.Split, error) {
		return features.SplitTarget(encoded, req.Target)
	})
	if err != nil {
		return nil, err
	}

	result = &PrepareResult{
		Encoded: encoded,
		Split:   split,
		Report: domain.PreparedFeatures{
			Source:       req.TrainPath,
			Target:       req.Target,
			FeatureNames: split.FeatureNames,
			Samples:      split.Samples(),
			Positives:    split.Positives(),
			Steps:        steps,
		},
	}

	if test != nil {
		rows += test.Nrow()
		holdout, testLevels, _, err := s.clean(ctx, "test", test, req, levels)
		if err != nil {
			return nil, fmt.Errorf("test file: %w", err)
		}
		info := holdout.Info()
		result.Holdout = holdout
		result.Report.Holdout = &info
		result.Report.UnseenLevels = unseenLevels(levels, testLevels)
		if len(result.Report.UnseenLevels) > 0 {
			s.logger.WarnContext(ctx, "test file has levels missing from the training file",
				slog.Any("unseen_levels", result.Report.UnseenLevels))
		}
	}

	s.logger.InfoContext(ctx, "features prepared",
		slog.Int("samples", split.Samples()),
		slog.Int("features", len(split.FeatureNames)),
		slog.Int("positives", split.Positives()),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// clean drops the configured columns and incomplete rows, then one-hot
// encodes what is left, recording the schema after every step. Columns in
// trained are encoded with those levels. The returned levels are the ones
// found in t itself.
func (s *FeatureService) clean(ctx context.Context, side string, t *table.Table, req PrepareRequest, trained map[string][]string) (*table.Table, map[string][]string, []domain.StepReport, error) {
	var levels map[string][]string
	steps := []domain.StepReport{{Step: "load", Info: t.Info()}}
	logTable(ctx, s.logger.With(slog.String("side", side)), "load", t)

	stages := []struct {
		name string
		run  func(*table.Table) (*table.Table, error)
	}{
		{"drop_columns", func(t *table.Table) (*table.Table, error) { return t.Drop(req.DropColumns...) }},
		{"drop_na", func(t *table.Table) (*table.Table, error) { return t.DropNA() }},
		{"get_dummies", func(t *table.Table) (*table.Table, error) {
			opts := features.DummyOptions{DummyNA: req.DummyNA, DropFirst: req.DropFirst}
			own, err := features.CategoryLevels(t, opts)
			if err != nil {
				return nil, err
			}
			levels = own
			opts.Levels = maps.Clone(own)
			for col, fixed := range trained {
				if _, ok := opts.Levels[col]; ok {
					opts.Levels[col] = fixed
				}
			}
			return features.GetDummies(t, opts)
		}},
	}

	for _, stage := range stages {
		next, err := traced(ctx, s.logger, "features."+stage.name, func(context.Context) (*table.Table, error) {
			return stage.run(t)
		})
		if err != nil {
			return nil, nil, nil, err
		}
		t = next
		steps = append(steps, domain.StepReport{Step: stage.name, Info: t.Info()})
		logTable(ctx, s.logger.With(slog.String("side", side)), stage.name, t)
	}

	return t, levels, steps, nil
}

// unseenLevels lists the test levels of each encoded column that the
// training file never had; those rows encode as all zeros.
func unseenLevels(train, test map[string][]string) map[string][]string {
	var out map[string][]string
	for col, levels := range test {
		known, ok := train[col]
		if !ok {
			continue
		}
		for _, l := range levels {
			if slices.Contains(known, l) {
				continue
			}
			if out == nil {
				out = make(map[string][]string)
			}
			out[col] = append(out[col], l)
		}
	}
	return out
}

// Encode one-hot encodes an in-memory table
func (s *FeatureService) Encode(ctx context.Context, t *table.Table, opts features.DummyOptions) (*table.Table, error) {
	start := time.Now()
	out, err := traced(ctx, s.logger, "features.encode", func(context.Context) (*table.Table, error) {
		return features.GetDummies(t, opts)
	})
	s.metrics.RecordWorkflow(ctx, WorkflowFeatures, t.Nrow(), time.Since(start), err)
	return out, err
}

// Vectorize fits a dictionary vectorizer on records and returns the
// resulting feature names and matrix.
func (s *FeatureService) Vectorize(ctx context.Context, records []map[string]any) (*domain.VectorizedRecords, error) {
	if len(records) > config.MaxVectorizeRecords {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("%d records exceed the limit of %d", len(records), config.MaxVectorizeRecords))
	}

	start := time.Now()
	out, err := traced(ctx, s.logger, "features.vectorize", func(context.Context) (*domain.VectorizedRecords, error) {
		vec := features.NewDictVectorizer()
		m, err := vec.FitTransform(records)
		if err != nil {
			return nil, err
		}
		return &domain.VectorizedRecords{FeatureNames: vec.FeatureNames(), Matrix: features.Rows(m)}, nil
	})
	s.metrics.RecordWorkflow(ctx, WorkflowFeatures, len(records), time.Since(start), err)
	return out, err
}

func (s *FeatureService) withDefaults(req PrepareRequest) PrepareRequest {
	titanic := s.cfg.Workflows.Titanic
	if req.TrainPath == "" {
		req.TrainPath = s.cfg.TitanicTrainPath()
	}
	if req.DropColumns == nil {
		req.DropColumns = titanic.DropColumns
	}
	if req.Target == "" {
		req.Target = titanic.Target
	}
	return req
}
