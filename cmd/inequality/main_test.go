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
	testutil.WriteFile(t, root, "data/CORE/income-by-country.csv", testutil.IncomeCSV)

	cfg := config.Default()
	cfg.Paths.Root = root
	return cfg
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "lists",
			args: []string{"-years", "2014, 1990", "-countries", "India,United States"},
			want: options{years: []int{2014, 1990}, countries: []string{"India", "United States"}},
		},
		{
			name: "preset",
			args: []string{"-preset", "south-asia"},
			want: options{preset: "south-asia"},
		},
		{
			name:    "bad year",
			args:    []string{"-years", "20x4"},
			wantErr: true,
		},
		{
			name:    "preset with filters",
			args:    []string{"-preset", "south-asia", "-years", "2014"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunPresets(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, logger, options{out: "ratios.csv"}, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Inequality in 2014 across five economies (5 rows)")
	assert.Contains(t, out, "Inequality in China and South Asia, 1980 to 2014 (7 rows)")
	assert.Contains(t, out, "inf")

	reports := cfg.GetPaths().ReportsDir
	assert.FileExists(t, filepath.Join(reports, "ratios-snapshot-2014.csv"))
	assert.FileExists(t, filepath.Join(reports, "ratios-south-asia.csv"))
}

func TestRunCustomQuery(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	opts := options{years: []int{2014}, countries: []string{"Germany"}, out: "germany.xlsx"}
	require.NoError(t, run(context.Background(), cfg, logger, opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Custom query (1 rows)")
	assert.Regexp(t, `Germany\s+2014\s+5000\s+50000\s+10\n`, out)
	assert.FileExists(t, filepath.Join(cfg.GetPaths().ReportsDir, "germany.xlsx"))
}

func TestRunUnknownPreset(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	assert.Error(t, run(context.Background(), cfg, logger, options{preset: "europe"}, &stdout))
}

func TestListPresets(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), config.Default(), nil, options{listPresets: true}, &stdout))
	assert.Contains(t, stdout.String(), "snapshot-2014")
	assert.Contains(t, stdout.String(), "Srilanka")
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "out.csv", exportName("out.csv", "south-asia", 1))
	assert.Equal(t, "out-south-asia.xlsx", exportName("out.xlsx", "south-asia", 2))
}
