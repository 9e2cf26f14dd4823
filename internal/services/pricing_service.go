package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"featurelab/internal/config"
	"featurelab/internal/infrastructure"
	"featurelab/internal/pricing"
	"featurelab/pkg/contracts/domain"
)

// GridRequest describes a spot grid. A zero Step uses the configured grid.
type GridRequest struct {
	From float64 `json:"from" validate:"gte=0"`
	To   float64 `json:"to" validate:"gtefield=From"`
	Step float64 `json:"step" validate:"gte=0"`
}

// PricingService prices European puts over spot grids
type PricingService struct {
	cfg     *config.Config
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewPricingService creates a pricing service. metrics may be nil.
func NewPricingService(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger) *PricingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PricingService{
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "pricing_service"),
	}
}

// DefaultParams returns the configured contract
func (s *PricingService) DefaultParams() domain.PutParams {
	p := s.cfg.Workflows.Pricing
	return domain.PutParams{Strike: p.Strike, Rate: p.Rate, Yield: p.Yield, Maturity: p.Maturity, Sigma: p.Sigma}
}

// Grid builds the spot grid for req, or the configured grid when Step is zero
func (s *PricingService) Grid(req GridRequest) ([]float64, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Step == 0 {
		p := s.cfg.Workflows.Pricing
		req = GridRequest{From: p.GridFrom, To: p.GridTo, Step: p.GridStep}
	}
	return pricing.SpotGrid(req.From, req.To, req.Step)
}

// Quote prices the put at every spot of the grid
func (s *PricingService) Quote(ctx context.Context, params domain.PutParams, grid GridRequest) (quotes []domain.PutQuote, err error) {
	ctx, span := infrastructure.StartSpan(ctx, "pricing.quote",
		attribute.Float64("strike", params.Strike),
		attribute.Float64("sigma", params.Sigma))
	defer span.End()

	start := time.Now()
	points := 0
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		s.metrics.RecordWorkflow(ctx, WorkflowPricing, points, time.Since(start), err)
	}()

	spots, err := s.Grid(grid)
	if err != nil {
		return nil, err
	}
	points = len(spots)

	quotes, err = pricing.Quotes(spots, params)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "put quoted",
		slog.Int("points", points),
		slog.Float64("strike", params.Strike),
		slog.Duration("duration", time.Since(start)))
	return quotes, nil
}

// Benchmark times repeated pricing of the grid
func (s *PricingService) Benchmark(ctx context.Context, params domain.PutParams, grid GridRequest, reps int) (pricing.BenchmarkResult, error) {
	spots, err := s.Grid(grid)
	if err != nil {
		return pricing.BenchmarkResult{}, err
	}

	res, err := traced(ctx, s.logger, "pricing.benchmark", func(context.Context) (pricing.BenchmarkResult, error) {
		return pricing.Benchmark(spots, params, reps)
	})
	if err != nil {
		return res, err
	}

	s.logger.InfoContext(ctx, "benchmark finished",
		slog.Int("points", res.Points),
		slog.Int("replications", res.Replications),
		slog.Duration("per_replication", res.PerRep))
	return res, nil
}
