package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, "data/general/titanic_train.csv", testutil.TitanicTrainCSV)
	testutil.WriteFile(t, root, "data/general/titanic_test.csv", testutil.TitanicTestCSV)

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
			name: "defaults",
			args: nil,
			want: options{head: 5},
		},
		{
			name: "all flags",
			args: []string{"-train", "a.csv", "-target", "Pclass", "-drop", "Name,Ticket", "-dummy-na", "-head", "0", "-out", "x.xlsx"},
			want: options{train: "a.csv", target: "Pclass", drop: "Name,Ticket", dummyNA: true, head: 0, out: "x.xlsx"},
		},
		{
			name:    "negative head",
			args:    []string{"-head", "-1"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-verbose"},
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

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	opts := options{test: cfg.TitanicTestPath(), head: 3, out: "encoded.csv"}
	require.NoError(t, run(context.Background(), cfg, logger, opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "== load\n11 entries")
	assert.Contains(t, out, "== drop_na\n9 entries")
	assert.Contains(t, out, "y: 9 (Survived, 5 positive)")
	assert.Contains(t, out, "Sex_female")
	assert.Contains(t, out, "== holdout")
	assert.Contains(t, out, "unseen in train: Embarked=Q")
	assert.FileExists(t, filepath.Join(cfg.GetPaths().ReportsDir, "encoded.csv"))
}

func TestRunUnknownTarget(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, logger, options{target: "Fate"}, &stdout)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Name", "Ticket"}, splitList(" Name, ,Ticket "))
	assert.Nil(t, splitList(","))
}

func TestRunMissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, logger, options{}, &stdout)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	assert.Empty(t, stdout.String())
}

func TestRunBadExportFormat(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, logger, options{out: "encoded.parquet"}, &stdout)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}
