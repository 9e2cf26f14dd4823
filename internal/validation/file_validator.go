package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"featurelab/internal/errors"
	"featurelab/internal/table"
)

// FileValidator checks workflow inputs and output locations before a run
// so executables fail early with a message naming the offending path
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputFile checks that path is a readable, non-empty table file in
// one of the loadable formats (.csv, .csv.gz, .xlsx)
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist", slog.String("file", path))
		return errors.NewNotFoundError("file " + path).WithContext("file", path)
	}
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err).WithContext("file", path)
	}
	if info.IsDir() {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).WithContext("file", path)
	}
	if info.Size() == 0 {
		return errors.NewAppValidationError(fmt.Sprintf("file %s is empty", path)).WithContext("file", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("skipping temporary Excel file", slog.String("file", path))
		return errors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path)).WithContext("file", path)
	}
	if table.Format(path) == "" {
		return errors.NewAppValidationError(
			fmt.Sprintf("file %s is not a table (extension %q, want .csv, .csv.gz or .xlsx)", path, filepath.Ext(path))).
			WithContext("file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err).WithContext("file", path)
	}
	file.Close()

	v.logger.Debug("input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFiles validates every non-empty path and reports the first failure
func (v *FileValidator) ValidateInputFiles(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := v.ValidateInputFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateExportPath checks the export target: a supported extension and a
// writable parent directory. Relative names resolve against baseDir.
func (v *FileValidator) ValidateExportPath(baseDir, name string, formats ...string) (string, error) {
	full := name
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, filepath.FromSlash(name))
	}

	format := table.Format(full)
	supported := false
	for _, f := range formats {
		if format == f {
			supported = true
			break
		}
	}
	if !supported {
		return "", errors.NewAppValidationError(
			fmt.Sprintf("cannot export to %s: want one of %s", name, strings.Join(formats, ", "))).
			WithContext("file", name)
	}

	if err := v.ValidateOutputDirectory(filepath.Dir(full)); err != nil {
		return "", err
	}
	return full, nil
}
