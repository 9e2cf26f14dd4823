package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// Every workflow resolves its inputs and outputs through this type
type Paths struct {
	RootDir     string
	DataDir     string
	GeneralDir  string
	CoreDir     string
	DatasetsDir string
	ReportsDir  string
	LogsDir     string

	// Well-known input files
	TitanicTrainCSV string
	TitanicTestCSV  string
	IncomeCSV       string
	DigitsCSV       string
}

// Layout below the root directory:
//
//	data/
//	  general/    titanic_train.csv, titanic_test.csv
//	  CORE/       income-by-country.csv
//	  datasets/   digits.csv(.gz)
//	  reports/    exported tables
//	logs/
const (
	dataDirName     = "data"
	generalDirName  = "general"
	coreDirName     = "CORE"
	datasetsDirName = "datasets"
	reportsDirName  = "reports"
	logsDirName     = "logs"
)

// NewPaths builds the directory layout rooted at root
func NewPaths(root string) *Paths {
	dataDir := filepath.Join(root, dataDirName)
	generalDir := filepath.Join(dataDir, generalDirName)
	coreDir := filepath.Join(dataDir, coreDirName)
	datasetsDir := filepath.Join(dataDir, datasetsDirName)

	return &Paths{
		RootDir:     root,
		DataDir:     dataDir,
		GeneralDir:  generalDir,
		CoreDir:     coreDir,
		DatasetsDir: datasetsDir,
		ReportsDir:  filepath.Join(dataDir, reportsDirName),
		LogsDir:     filepath.Join(root, logsDirName),

		TitanicTrainCSV: filepath.Join(generalDir, "titanic_train.csv"),
		TitanicTestCSV:  filepath.Join(generalDir, "titanic_test.csv"),
		IncomeCSV:       filepath.Join(coreDir, "income-by-country.csv"),
		DigitsCSV:       filepath.Join(datasetsDir, "digits.csv"),
	}
}

// GetPaths resolves the layout against root. An empty root means the
// current working directory, which is where the workflows historically ran.
func GetPaths(root string) (*Paths, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	return NewPaths(abs), nil
}

// EnsureDirectories creates the output directories if they don't exist.
// Input directories are left alone; a missing input is reported when it is read.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataPath resolves a file name relative to the data directory.
// Absolute paths are returned unchanged.
func (p *Paths) GetDataPath(name string) string {
	return p.resolve(p.DataDir, name)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(name string) string {
	return p.resolve(p.ReportsDir, name)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(name string) string {
	return p.resolve(p.LogsDir, name)
}

// GetDatasetPath returns the path for a bundled dataset file
func (p *Paths) GetDatasetPath(name string) string {
	return p.resolve(p.DatasetsDir, name)
}

func (p *Paths) resolve(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, filepath.FromSlash(name))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("resolved paths",
		slog.String("root_dir", p.RootDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.Bool("titanic_train_exists", FileExists(p.TitanicTrainCSV)),
		slog.Bool("income_exists", FileExists(p.IncomeCSV)),
	)
}

// ValidateRequiredFiles reports every listed file that is missing
func (p *Paths) ValidateRequiredFiles(files ...string) error {
	var missing []string
	for _, f := range files {
		if !FileExists(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required files not found: %s", strings.Join(missing, ", "))
	}
	return nil
}
