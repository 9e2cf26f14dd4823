package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/config"
	"featurelab/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, "data/datasets/digits.csv", testutil.DigitsCSV(40))

	cfg := config.Default()
	cfg.Paths.Root = root
	return cfg
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "default all", args: nil, want: "all"},
		{name: "case insensitive", args: []string{"-dataset", "IRIS"}, want: "iris"},
		{name: "unknown dataset", args: []string{"-dataset", "wine"}, wantErr: true},
		{name: "export needs one dataset", args: []string{"-out", "all.csv"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.dataset)
		})
	}
}

func TestRunAll(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, logger, options{dataset: "all", seed: -1}, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "== digits: 40 samples x 64 features")
	assert.Contains(t, out, "== iris: 150 samples x 4 features")
	assert.Contains(t, out, "classes: setosa=50 versicolor=50 virginica=50")
	assert.Contains(t, out, "sepal")
}

func TestRunAllFreshCheckout(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, logger, options{dataset: "all", seed: -1}, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "== digits: 1000 samples x 64 features")
	assert.Contains(t, out, "classes: 0=100 1=100")
	assert.Contains(t, out, "== iris: 150 samples x 4 features")
}

func TestRunSplitAndExport(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	opts := options{dataset: "iris", split: true, testRatio: 0.5, seed: 3, out: "iris.xlsx"}
	require.NoError(t, run(context.Background(), cfg, logger, opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "split (seed 3, test ratio 0.50): train 75")
	assert.Contains(t, out, "test 75")
	assert.FileExists(t, filepath.Join(cfg.GetPaths().ReportsDir, "iris.xlsx"))
}

func TestFormatCounts(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 1, "z": 3}
	assert.Equal(t, "z=3 a=1 b=2", formatCounts(counts, []string{"z", "missing"}))
	assert.Equal(t, "", formatCounts(nil, nil))
}
