package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"featurelab/internal/config"
	"featurelab/internal/inequality"
	"featurelab/internal/infrastructure"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// InequalityService answers decile ratio queries over the income file
type InequalityService struct {
	cfg     *config.Config
	metrics *infrastructure.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	cached *table.Table
}

// NewInequalityService creates an inequality service. metrics may be nil.
func NewInequalityService(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *InequalityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InequalityService{
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "inequality_service"),
	}
}

// Table loads the income file once and derives the ratio column. Failed
// loads are not cached.
func (s *InequalityService) Table(ctx context.Context) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	path := s.cfg.IncomePath()
	t, err := traced(ctx, s.logger, "inequality.load", func(context.Context) (*table.Table, error) {
		raw, err := inequality.LoadWithSkip(path, s.cfg.Workflows.Income.SkipRows)
		if err != nil {
			return nil, err
		}
		logTable(ctx, s.logger, "load", raw)
		return inequality.WithRatio(raw)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "income table loaded",
		slog.String("path", path),
		slog.Int("rows", t.Nrow()))
	s.cached = t
	return t, nil
}

// Report runs q against the income table
func (s *InequalityService) Report(ctx context.Context, q inequality.Query) (report *domain.IncomeReport, err error) {
	if err = validateRequest(q); err != nil {
		return nil, err
	}

	ctx, span := infrastructure.StartSpan(ctx, "inequality.report",
		attribute.IntSlice("years", q.Years),
		attribute.StringSlice("countries", q.Countries))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() { s.metrics.RecordWorkflow(ctx, WorkflowInequality, rows, time.Since(start), err) }()

	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	rows = t.Nrow()

	filtered, err := traced(ctx, s.logger, "inequality.filter", func(context.Context) (*table.Table, error) {
		return inequality.Apply(t, q)
	})
	if err != nil {
		return nil, err
	}

	out, err := inequality.Rows(filtered)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "inequality report",
		slog.Any("years", q.Years),
		slog.Any("countries", q.Countries),
		slog.Int("matches", len(out)))

	return &domain.IncomeReport{Years: q.Years, Countries: q.Countries, Rows: out}, nil
}

// Preset runs a named built-in query
func (s *InequalityService) Preset(ctx context.Context, name string) (*domain.IncomeReport, error) {
	p, err := inequality.LookupPreset(name)
	if err != nil {
		return nil, err
	}
	report, err := s.Report(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	report.Query = p.Name
	return report, nil
}

// Filtered returns the projected table for q, for printing or export
func (s *InequalityService) Filtered(ctx context.Context, q inequality.Query) (*table.Table, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := inequality.Apply(t, q)
	if err != nil {
		return nil, err
	}
	return inequality.Project(filtered)
}
