package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"featurelab/internal/errors"
	"featurelab/internal/infrastructure"
	"featurelab/internal/table"
)

// Workflow names used for spans, metrics and logs
const (
	WorkflowFeatures   = "features"
	WorkflowDatasets   = "datasets"
	WorkflowInequality = "inequality"
	WorkflowPricing    = "pricing"
)

var validate = validator.New()

func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return errors.NewAppError(errors.ErrTypeValidation, "invalid request", err)
	}
	return nil
}

// traced runs fn inside a span called name and logs how it went
func traced[T any](ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := infrastructure.StartSpan(ctx, name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "step failed",
			slog.String("step", name),
			slog.String("error", err.Error()))
		return out, err
	}

	logger.DebugContext(ctx, "step completed",
		slog.String("step", name),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// logTable reports the schema of t after a step, in the spirit of df.info()
func logTable(ctx context.Context, logger *slog.Logger, step string, t *table.Table) {
	info := t.Info()
	logger.InfoContext(ctx, "table shape",
		slog.String("step", step),
		slog.Int("rows", info.Rows),
		slog.Int("columns", len(info.Columns)),
		slog.Any("names", info.ColumnNames()),
		slog.Bool("complete", info.Complete()))
}
