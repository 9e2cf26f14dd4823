package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"featurelab/internal/config"
	"featurelab/internal/datasets"
	"featurelab/pkg/contracts"
)

// HealthService reports liveness, readiness and build information
type HealthService struct {
	cfg       *config.Config
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth represents one readiness check
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service
func NewHealthService(cfg *config.Config, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		cfg:       cfg,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// LivenessCheck reports that the process is serving
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck verifies the bundled dataset parses and reports which
// workflow inputs are present. Missing input files are reported but do
// not make the service unready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Checks:    make(map[string]ServiceHealth),
	}

	if _, err := datasets.LoadIris(); err != nil {
		status.Checks["iris"] = ServiceHealth{Status: "not_ready", Message: err.Error()}
		status.Status = "not_ready"
	} else {
		status.Checks["iris"] = ServiceHealth{Status: "ready"}
	}

	inputs := map[string]string{
		"titanic_train": hs.cfg.TitanicTrainPath(),
		"income":        hs.cfg.IncomePath(),
		"digits":        hs.cfg.DigitsPath(),
	}
	for name, path := range inputs {
		status.Checks[name] = fileHealth(path)
	}
	if hs.cfg.Workflows.Datasets.DigitsFile == "" && status.Checks["digits"].Status == "missing" {
		status.Checks["digits"] = ServiceHealth{Status: "ready", Message: "bundled"}
	}

	hs.logger.DebugContext(ctx, "readiness checked", slog.String("status", status.Status))
	return status
}

// Version returns build information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func fileHealth(path string) ServiceHealth {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return ServiceHealth{Status: "missing", Message: fmt.Sprintf("%s not found", path)}
	case err != nil:
		return ServiceHealth{Status: "error", Message: err.Error()}
	case info.IsDir():
		return ServiceHealth{Status: "error", Message: fmt.Sprintf("%s is a directory", path)}
	default:
		return ServiceHealth{Status: "ready", Message: path}
	}
}
