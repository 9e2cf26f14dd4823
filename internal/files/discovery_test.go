package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/errors"
	"featurelab/internal/shared/testutil"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindDataFiles(t *testing.T) {
	tests := []struct {
		name          string
		files         []string
		expectedNames []string
	}{
		{
			name:          "supported formats regardless of case",
			files:         []string{"b.csv", "a.CSV", "c.csv.gz", "d.xlsx"},
			expectedNames: []string{"a.CSV", "b.csv", "c.csv.gz", "d.xlsx"},
		},
		{
			name:          "other files skipped",
			files:         []string{"notes.txt", "data.csv", "old.xls", "archive.gz"},
			expectedNames: []string{"data.csv"},
		},
		{
			name:          "empty directory",
			files:         []string{},
			expectedNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			for _, f := range tt.files {
				testutil.WriteFile(t, base, "general/"+f, "x\n1\n")
			}
			require.NoError(t, os.MkdirAll(filepath.Join(base, "general", "sub.csv"), 0755))

			files, err := NewDiscovery(base).FindDataFiles("general")
			if len(tt.files) == 0 {
				require.NoError(t, err)
				assert.Empty(t, files)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, f := range files {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(base, "general", f.Name), f.Path)
				assert.NotEmpty(t, f.Format)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestFindDataFilesMissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindDataFiles("nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestFindAll(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, base, "general/titanic_train.csv", testutil.TitanicTrainCSV)
	testutil.WriteFile(t, base, "CORE/income-by-country.csv", testutil.IncomeCSV)
	testutil.WriteFile(t, base, "CORE/readme.md", "ignore")

	files, err := NewDiscovery(base).FindAll()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "income-by-country.csv", files[0].Name)
	assert.Equal(t, ".csv", files[1].Format)

	_, err = NewDiscovery(filepath.Join(base, "missing")).FindAll()
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	d := NewDiscovery(base)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare name", "titanic.csv", filepath.Join(base, "titanic.csv"), false},
		{"nested", "CORE/income.xlsx", filepath.Join(base, "CORE", "income.xlsx"), false},
		{"cleaned", "general/../digits.csv.gz", filepath.Join(base, "digits.csv.gz"), false},
		{"escape", "../secret.csv", "", true},
		{"absolute", "/etc/passwd.csv", "", true},
		{"unsupported", "notes.txt", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Resolve(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "old.csv", ModTime: now.Add(-2 * time.Hour)},
		{Name: "new.csv", ModTime: now},
		{Name: "mid.csv", ModTime: now.Add(-time.Hour)},
	}

	latest, ok := GetLatestFile(files)
	assert.True(t, ok)
	assert.Equal(t, "new.csv", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
