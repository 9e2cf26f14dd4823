package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/files"
	"featurelab/internal/infrastructure"
	customMiddleware "featurelab/internal/middleware"
	"featurelab/internal/services"
	handlers "featurelab/internal/transport/http"
	"featurelab/pkg/contracts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// AppName is the service name shown in startup logs
const AppName = "featurelab"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Files         *files.Discovery

	errorHandler *errors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Features   *services.FeatureService
	Datasets   *services.DatasetService
	Inequality *services.InequalityService
	Pricing    *services.PricingService
	Health     *services.HealthService
}

// NewApplication loads configuration from the environment and the optional
// config file and wires the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, infrastructure.OTelConfigFrom(cfg.Telemetry))
}

// New wires an application from an already loaded configuration. A nil
// otelCfg is derived from the telemetry section of cfg.
func New(cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if otelCfg == nil {
		otelCfg = infrastructure.OTelConfigFrom(cfg.Telemetry)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths := cfg.GetPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Files:         files.NewDiscovery(paths.DataDir),
		errorHandler:  errors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Services = &ServiceContainer{
		Features:   services.NewFeatureService(a.Config, a.Metrics, a.Logger),
		Datasets:   services.NewDatasetService(a.Config, a.Metrics, a.Logger),
		Inequality: services.NewInequalityService(a.Config, a.Metrics, a.Logger),
		Pricing:    services.NewPricingService(a.Config, a.Metrics, a.Logger),
		Health:     services.NewHealthService(a.Config, a.Logger),
	}
}

// setupRouter builds the middleware chain and mounts the handlers.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → limits.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	// Prometheus scrapes stay outside the instrumented group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))
	}

	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)
	query := customMiddleware.NewQueryParamValidator(a.Logger, a.errorHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.RateLimit(a.Config.Server.RateLimit, a.errorHandler, a.Logger))
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes, a.errorHandler))

		health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/healthz", health.LivenessCheck)
		r.Get("/readyz", health.ReadinessCheck)
		r.Get("/version", health.Version)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(customMiddleware.Compress(5))
			r.Use(validation.ValidateJSON)

			r.Mount("/datasets", handlers.NewDatasetHandler(a.Services.Datasets, validation, a.Logger, a.errorHandler).Routes())
			r.Mount("/features", handlers.NewFeatureHandler(a.Services.Features, validation, query, a.Logger, a.errorHandler).Routes())
			r.Mount("/inequality", handlers.NewInequalityHandler(a.Services.Inequality, validation, query, a.Logger, a.errorHandler).Routes())
			r.Mount("/pricing", handlers.NewPricingHandler(a.Services.Pricing, validation, query, a.Logger, a.errorHandler).Routes())
			r.Get("/files", handlers.NewFilesHandler(a.Files, a.Logger, a.errorHandler).ListFiles)
		})
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "server stopped unexpectedly")
	}

	// ctx may already be cancelled; shutdown gets its own
	return a.Stop(context.Background())
}

// performStartupHealthCheck checks output directories are writable and
// reports workflow inputs that are missing
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	paths := a.Config.GetPaths()
	var warnings []string

	directories := map[string]string{
		"reports": paths.ReportsDir,
		"logs":    paths.LogsDir,
	}
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
			continue
		}
		_ = os.Remove(testFile)
	}

	inputs := []string{a.Config.TitanicTrainPath(), a.Config.IncomePath()}
	if a.Config.Workflows.Datasets.DigitsFile != "" {
		inputs = append(inputs, a.Config.DigitsPath())
	}
	if err := paths.ValidateRequiredFiles(inputs...); err != nil {
		a.Logger.WarnContext(ctx, "workflow inputs missing", slog.String("error", err.Error()))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "startup health check passed")
	return nil
}
