package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/config"
	"featurelab/internal/exporter"
	"featurelab/internal/shared/testutil"
	"featurelab/pkg/contracts/domain"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantOverrides map[string]float64
		wantAt        []float64
		wantErr       bool
	}{
		{
			name:          "defaults",
			wantOverrides: map[string]float64{},
			wantAt:        []float64{40, 50, 55, 60, 65, 70, 80},
		},
		{
			name:          "explicit zero is an override",
			args:          []string{"-rate", "0", "-sigma", "0.2", "-at", "60"},
			wantOverrides: map[string]float64{"rate": 0, "sigma": 0.2},
			wantAt:        []float64{60},
		},
		{
			name:    "bad spot",
			args:    []string{"-at", "sixty"},
			wantErr: true,
		},
		{
			name:    "negative reps",
			args:    []string{"-reps", "-3"},
			wantErr: true,
		},
		{
			name:    "bench log without bench",
			args:    []string{"-bench=false", "-bench-log", "bench.csv"},
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
			assert.Equal(t, tt.wantOverrides, got.overrides)
			assert.Equal(t, tt.wantAt, got.at)
			assert.True(t, got.bench)
		})
	}
}

func TestApply(t *testing.T) {
	cfg := config.Default().Workflows.Pricing
	base := domain.PutParams{Strike: cfg.Strike, Rate: cfg.Rate, Yield: cfg.Yield, Maturity: cfg.Maturity, Sigma: cfg.Sigma}
	params, grid := apply(base, cfg, map[string]float64{"strike": 70, "step": 1, "unknown": 5})

	assert.Equal(t, 70.0, params.Strike)
	assert.Equal(t, cfg.Sigma, params.Sigma)
	assert.Equal(t, cfg.GridFrom, grid.From)
	assert.Equal(t, cfg.GridTo, grid.To)
	assert.Equal(t, 1.0, grid.Step)
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	opts := options{
		overrides: map[string]float64{"from": 50, "to": 70, "step": 10},
		at:        []float64{60},
		bench:     true,
		reps:      2,
		out:       "quotes.csv",
	}

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, logger, opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "put K=60 r=0.01 q=0.02 T=1 sigma=0.05")
	assert.Contains(t, out, "grid 50..70 step 10: 3 points")
	assert.Contains(t, out, "benchmark: 2 replications of 3 points")

	f, err := os.Open(filepath.Join(cfg.GetPaths().ReportsDir, "quotes.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestRunInvalidContract(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	opts := options{overrides: map[string]float64{"sigma": 0}}
	var stdout bytes.Buffer
	assert.Error(t, run(context.Background(), cfg, logger, opts, &stdout))
}

func TestRunBenchLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, logs := testutil.NewTestLogger(t)

	opts := options{
		overrides: map[string]float64{"from": 50, "to": 70, "step": 10},
		bench:     true,
		reps:      2,
		benchLog:  "bench/history.csv",
	}

	for i := 0; i < 2; i++ {
		var stdout bytes.Buffer
		require.NoError(t, run(context.Background(), cfg, logger, opts, &stdout))
	}
	assert.True(t, logs.ContainsMessage("benchmark logged"))

	f, err := os.Open(filepath.Join(cfg.GetPaths().ReportsDir, "bench", "history.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3, "one header then one row per run")
	assert.Equal(t, exporter.BenchmarkHeaders, records[0])
	for _, rec := range records[1:] {
		assert.Equal(t, "60", rec[1])
		assert.Equal(t, "3", rec[6])
		assert.Equal(t, "2", rec[7])
	}
}

func TestRunBenchLogBadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	opts := options{bench: true, benchLog: "history.xlsx"}
	var stdout bytes.Buffer
	assert.Error(t, run(context.Background(), cfg, logger, opts, &stdout))
	assert.Empty(t, stdout.String())
}
