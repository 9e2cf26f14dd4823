package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Workflows WorkflowsConfig `yaml:"workflows" envconfig:"WORKFLOWS"`

	paths *Paths
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// Root is the directory the data/ and logs/ layout hangs off.
	// Empty means the working directory.
	Root string `yaml:"root" envconfig:"ROOT"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// WorkflowsConfig holds the per-workflow inputs and knobs
type WorkflowsConfig struct {
	Titanic  TitanicConfig  `yaml:"titanic" envconfig:"TITANIC"`
	Income   IncomeConfig   `yaml:"income" envconfig:"INCOME"`
	Datasets DatasetsConfig `yaml:"datasets" envconfig:"DATASETS"`
	Pricing  PricingConfig  `yaml:"pricing" envconfig:"PRICING"`
}

// TitanicConfig configures the feature preparation workflow
type TitanicConfig struct {
	TrainFile   string   `yaml:"train_file" envconfig:"TRAIN_FILE"`
	TestFile    string   `yaml:"test_file" envconfig:"TEST_FILE"`
	DropColumns []string `yaml:"drop_columns" envconfig:"DROP_COLUMNS"`
	Target      string   `yaml:"target" envconfig:"TARGET" validate:"required"`
}

// IncomeConfig configures the income inequality workflow
type IncomeConfig struct {
	File     string `yaml:"file" envconfig:"FILE"`
	SkipRows int    `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"gte=0"`
}

// DatasetsConfig configures the toy dataset workflow
type DatasetsConfig struct {
	DigitsFile string  `yaml:"digits_file" envconfig:"DIGITS_FILE"`
	SplitSeed  uint64  `yaml:"split_seed" envconfig:"SPLIT_SEED"`
	TestRatio  float64 `yaml:"test_ratio" envconfig:"TEST_RATIO" validate:"gt=0,lt=1"`
}

// PricingConfig holds the default put parameters and spot grid
type PricingConfig struct {
	Strike   float64 `yaml:"strike" envconfig:"STRIKE" validate:"gt=0"`
	Rate     float64 `yaml:"rate" envconfig:"RATE"`
	Yield    float64 `yaml:"yield" envconfig:"YIELD"`
	Maturity float64 `yaml:"maturity" envconfig:"MATURITY" validate:"gt=0"`
	Sigma    float64 `yaml:"sigma" envconfig:"SIGMA" validate:"gt=0"`
	GridFrom float64 `yaml:"grid_from" envconfig:"GRID_FROM" validate:"gte=0"`
	GridTo   float64 `yaml:"grid_to" envconfig:"GRID_TO" validate:"gtefield=GridFrom"`
	GridStep float64 `yaml:"grid_step" envconfig:"GRID_STEP" validate:"gt=0"`
}

// EnvPrefix namespaces every environment variable, e.g. FEATURELAB_SERVER_PORT
const EnvPrefix = "FEATURELAB"

// ConfigFileEnv names an explicit config file, overriding the search locations
const ConfigFileEnv = "FEATURELAB_CONFIG"

// Load loads configuration from defaults, the config file and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) resolvePaths() error {
	paths, err := GetPaths(c.Paths.Root)
	if err != nil {
		return err
	}
	c.paths = paths
	return nil
}

// validate runs the struct tag rules
func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// GetPaths returns the resolved directory layout
func (c *Config) GetPaths() *Paths {
	if c.paths == nil {
		if err := c.resolvePaths(); err != nil {
			return NewPaths(c.Paths.Root)
		}
	}
	return c.paths
}

// TitanicTrainPath returns the configured training file or the layout default
func (c *Config) TitanicTrainPath() string {
	return c.inputPath(c.Workflows.Titanic.TrainFile, c.GetPaths().TitanicTrainCSV)
}

// TitanicTestPath returns the configured test file or the layout default
func (c *Config) TitanicTestPath() string {
	return c.inputPath(c.Workflows.Titanic.TestFile, c.GetPaths().TitanicTestCSV)
}

// IncomePath returns the configured income file or the layout default
func (c *Config) IncomePath() string {
	return c.inputPath(c.Workflows.Income.File, c.GetPaths().IncomeCSV)
}

// DigitsPath returns the configured digits file or the layout default
func (c *Config) DigitsPath() string {
	return c.inputPath(c.Workflows.Datasets.DigitsFile, c.GetPaths().DigitsCSV)
}

// inputPath resolves relative configured paths against the root directory
func (c *Config) inputPath(configured, fallback string) string {
	if configured == "" {
		return fallback
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(c.GetPaths().RootDir, filepath.FromSlash(configured))
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"featurelab.yaml",
		"configs/featurelab.yaml",
		"../configs/featurelab.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    10 << 20, // 10MB
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/featurelab.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "featurelab",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
		},
		Workflows: WorkflowsConfig{
			Titanic: TitanicConfig{
				DropColumns: []string{"Name", "Ticket", "Cabin"},
				Target:      "Survived",
			},
			Income: IncomeConfig{
				SkipRows: 2,
			},
			Datasets: DatasetsConfig{
				SplitSeed: 20130810,
				TestRatio: 0.25,
			},
			Pricing: PricingConfig{
				Strike:   60,
				Rate:     0.01,
				Yield:    0.02,
				Maturity: 1,
				Sigma:    0.05,
				GridFrom: 0,
				GridTo:   100,
				GridStep: 0.001,
			},
		},
	}
}
