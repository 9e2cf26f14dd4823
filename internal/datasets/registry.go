package datasets

import (
	"path/filepath"
	"sort"

	"featurelab/internal/config"
	"featurelab/internal/errors"
)

type loader func(dir string) (*Bunch, error)

var registry = map[string]loader{
	config.DatasetIris: func(string) (*Bunch, error) { return LoadIris() },
	config.DatasetDigits: func(dir string) (*Bunch, error) {
		for _, name := range []string{"digits.csv", "digits.csv.gz"} {
			path := filepath.Join(dir, name)
			if config.FileExists(path) {
				return LoadDigits(path)
			}
		}
		return LoadBundledDigits()
	},
}

// Names lists the registered datasets in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the named dataset. A digits.csv or digits.csv.gz in dir
// takes precedence over the bundled digits.
func Load(name, dir string) (*Bunch, error) {
	load, ok := registry[name]
	if !ok {
		return nil, errors.NewNotFoundError("dataset " + name).WithContext("dataset", name)
	}
	return load(dir)
}
