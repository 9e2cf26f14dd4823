// Package services orchestrates the featurelab workflows on top of the
// table, features, datasets, inequality and pricing packages.
//
// Each service takes the loaded configuration, an optional metrics set and
// a logger. Every workflow step runs inside its own OpenTelemetry span and
// logs the table shape it produced, so a run can be followed step by step
// in the logs:
//
//	svc := services.NewFeatureService(cfg, metrics, logger)
//	res, err := svc.Prepare(ctx, services.PrepareRequest{})
//
// Errors are returned as *errors.AppError values so the HTTP layer can map
// them onto status codes.
//
// # Available Services
//
//	- FeatureService: drop, dropna, one-hot encoding and target split
//	- DatasetService: toy dataset summaries and seeded splits
//	- InequalityService: decile income ratio queries
//	- PricingService: European put quotes over spot grids
//	- HealthService: liveness and readiness
package services
