package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"featurelab/internal/errors"
	"featurelab/internal/table"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Format  string    `json:"format"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Discovery provides file discovery operations below a data directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindDataFiles lists the loadable tables (.csv, .csv.gz, .xlsx) in dir,
// sorted by name. A relative dir is taken below the base path.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	fullPath := d.abs(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("directory " + fullPath).WithContext("dir", fullPath)
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		format := table.Format(name)
		if format == "" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindAll walks the base path and returns every loadable table below it,
// sorted by path
func (d *Discovery) FindAll() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(d.basePath, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == d.basePath {
				return err
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		format := table.Format(entry.Name())
		if format == "" {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("directory " + d.basePath).WithContext("dir", d.basePath)
		}
		return nil, errors.NewStorageError("failed to walk data directory", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Resolve maps a bare file name, or a path relative to the base path, to an
// absolute path inside the base path. Names that escape it are rejected.
func (d *Discovery) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.NewAppValidationError("file name is required")
	}
	if filepath.IsAbs(name) {
		return "", errors.NewAppValidationError("absolute paths are not accepted").WithContext("name", name)
	}

	base := filepath.Clean(d.basePath)
	full := filepath.Join(base, filepath.FromSlash(name))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewAppValidationError("file name escapes the data directory").WithContext("name", name)
	}

	if table.Format(full) == "" {
		return "", errors.NewAppValidationError(fmt.Sprintf("unsupported file type %q", filepath.Ext(full))).
			WithContext("name", name)
	}
	return full, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}

func (d *Discovery) abs(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
