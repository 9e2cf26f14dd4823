package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/features"
	"featurelab/internal/inequality"
	"featurelab/internal/shared/testutil"
	"featurelab/internal/table"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFile(t, root, "data/general/titanic_train.csv", testutil.TitanicTrainCSV)
	testutil.WriteFile(t, root, "data/general/titanic_test.csv", testutil.TitanicTestCSV)
	testutil.WriteFile(t, root, "data/CORE/income-by-country.csv", testutil.IncomeCSV)
	testutil.WriteFile(t, root, "data/datasets/digits.csv", testutil.DigitsCSV(40))

	cfg := config.Default()
	cfg.Paths.Root = root
	return cfg
}

func TestFeatureServicePrepare(t *testing.T) {
	cfg := newTestConfig(t)
	logger, handler := testutil.NewTestLogger(t)
	svc := NewFeatureService(cfg, nil, logger)

	res, err := svc.Prepare(context.Background(), PrepareRequest{TestPath: cfg.TitanicTestPath()})
	require.NoError(t, err)

	report := res.Report
	assert.Equal(t, "Survived", report.Target)
	assert.Equal(t, 9, report.Samples)
	assert.Equal(t, 5, report.Positives)
	assert.NotContains(t, report.FeatureNames, "Survived")
	assert.Contains(t, report.FeatureNames, "Sex_female")

	steps := make([]string, len(report.Steps))
	for i, s := range report.Steps {
		steps[i] = s.Step
	}
	assert.Equal(t, []string{"load", "drop_columns", "drop_na", "get_dummies"}, steps)
	assert.Equal(t, 11, report.Steps[0].Info.Rows)
	assert.False(t, report.Steps[0].Info.Complete())
	assert.True(t, report.Steps[2].Info.Complete())
	assert.Equal(t, 9, report.Steps[2].Info.Rows)

	require.NotNil(t, report.Holdout)
	assert.Equal(t, 3, report.Holdout.Rows)
	assert.Equal(t, report.FeatureNames, report.Holdout.ColumnNames(), "holdout is encoded with the training levels")
	assert.Equal(t, map[string][]string{"Embarked": {"Q"}}, report.UnseenLevels)

	embarkedS, err := res.Holdout.Float("Embarked_S")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, embarkedS)
	assert.True(t, handler.ContainsMessage("test file has levels missing from the training file"))

	assert.True(t, handler.ContainsMessage("features prepared"))
	testutil.AssertNoErrors(t, handler)
}

func TestFeatureServicePrepareHoldoutWithoutUnseenLevels(t *testing.T) {
	cfg := newTestConfig(t)
	testPath := testutil.WriteFile(t, cfg.GetPaths().RootDir, "data/general/short_test.csv",
		"PassengerId,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n"+
			"900,3,\"Doe, Mr. John\",male,30,0,0,1,7.5,,S\n")

	res, err := NewFeatureService(cfg, nil, nil).Prepare(context.Background(), PrepareRequest{TestPath: testPath})
	require.NoError(t, err)
	assert.Nil(t, res.Report.UnseenLevels)
	assert.Equal(t, res.Report.FeatureNames, res.Holdout.Names(), "levels missing from the test file still get columns")

	female, err := res.Holdout.Float("Sex_female")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, female)
}

func TestFeatureServicePrepareOptions(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewFeatureService(cfg, nil, nil)

	res, err := svc.Prepare(context.Background(), PrepareRequest{DropFirst: true})
	require.NoError(t, err)
	assert.NotContains(t, res.Report.FeatureNames, "Sex_female")
	assert.Contains(t, res.Report.FeatureNames, "Sex_male")
	assert.Nil(t, res.Holdout)
}

func TestFeatureServicePrepareErrors(t *testing.T) {
	cfg := newTestConfig(t)
	logger, handler := testutil.NewTestLogger(t)
	svc := NewFeatureService(cfg, nil, logger)

	_, err := svc.Prepare(context.Background(), PrepareRequest{TrainPath: cfg.GetPaths().GetDataPath("missing.csv")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	_, err = svc.Prepare(context.Background(), PrepareRequest{DropColumns: []string{"Deck"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.True(t, handler.ContainsMessage("step failed"))
}

func TestFeatureServiceVectorize(t *testing.T) {
	svc := NewFeatureService(config.Default(), nil, nil)

	out, err := svc.Vectorize(context.Background(), []map[string]any{
		{"city": "Dubai", "temperature": 33.0},
		{"city": "London", "temperature": 12.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"city=Dubai", "city=London", "temperature"}, out.FeatureNames)
	assert.Equal(t, [][]float64{{1, 0, 33}, {0, 1, 12}}, out.Matrix)

	tooMany := make([]map[string]any, config.MaxVectorizeRecords+1)
	_, err = svc.Vectorize(context.Background(), tooMany)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestFeatureServiceEncode(t *testing.T) {
	svc := NewFeatureService(config.Default(), nil, nil)

	tbl, err := table.LoadRecords([][]string{{"color", "n"}, {"red", "1"}, {"blue", "2"}}, table.LoadOptions{})
	require.NoError(t, err)

	out, err := svc.Encode(context.Background(), tbl, features.DummyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "color_blue", "color_red"}, out.Names())
}

func TestDatasetService(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewDatasetService(cfg, nil, nil)
	ctx := context.Background()

	assert.Equal(t, []string{"digits", "iris"}, svc.Names())

	iris, err := svc.Describe(ctx, "iris")
	require.NoError(t, err)
	assert.Equal(t, 150, iris.Samples)
	assert.Equal(t, 50, iris.ClassCounts["virginica"])

	digits, err := svc.Describe(ctx, "digits")
	require.NoError(t, err)
	assert.Equal(t, 40, digits.Samples)
	assert.Equal(t, 64, digits.Features)

	_, err = svc.Describe(ctx, "wine")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestDatasetServiceConfiguredDigitsFile(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Workflows.Datasets.DigitsFile = "elsewhere/digits.csv.gz"
	testutil.WriteGzipFile(t, cfg.GetPaths().RootDir, "elsewhere/digits.csv.gz", testutil.DigitsCSV(7))

	summary, err := NewDatasetService(cfg, nil, nil).Describe(context.Background(), "digits")
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Samples)
}

func TestDatasetServiceSplit(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewDatasetService(cfg, nil, nil)
	ctx := context.Background()

	train, test, summary, err := svc.Split(ctx, SplitRequest{Dataset: "iris"})
	require.NoError(t, err)
	assert.Equal(t, uint64(20130810), summary.Seed)
	assert.Equal(t, 0.25, summary.TestRatio)
	assert.Equal(t, 112, train.Samples())
	assert.Equal(t, 38, test.Samples())
	assert.Equal(t, summary.TrainSamples+summary.TestSamples, 150)

	seed := uint64(7)
	_, test7, summary7, err := svc.Split(ctx, SplitRequest{Dataset: "iris", TestRatio: 0.5, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), summary7.Seed)
	assert.Equal(t, 75, test7.Samples())

	_, _, _, err = svc.Split(ctx, SplitRequest{Dataset: "iris", TestRatio: 1.5})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	_, _, _, err = svc.Split(ctx, SplitRequest{})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestInequalityService(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewInequalityService(cfg, nil, nil)
	ctx := context.Background()

	report, err := svc.Preset(ctx, inequality.Snapshot2014.Name)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-2014", report.Query)
	require.Len(t, report.Rows, 5)
	assert.True(t, math.IsInf(report.Rows[0].InequalityRatio, 1))
	assert.Equal(t, "Botswana", report.Rows[4].Country)

	report, err = svc.Report(ctx, inequality.Query{Years: []int{1990}})
	require.NoError(t, err)
	assert.Len(t, report.Rows, 2)

	filtered, err := svc.Filtered(ctx, inequality.SouthAsia.Query)
	require.NoError(t, err)
	assert.Equal(t, 7, filtered.Nrow())
	assert.Equal(t, []string{"Country", "Year", "inequality_ratio"}, filtered.Names())

	_, err = svc.Preset(ctx, "europe")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	_, err = svc.Report(ctx, inequality.Query{Countries: []string{""}})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestInequalityServiceMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()
	svc := NewInequalityService(cfg, nil, nil)

	_, err := svc.Report(context.Background(), inequality.Query{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	testutil.WriteFile(t, cfg.Paths.Root, "data/CORE/income-by-country.csv", testutil.IncomeCSV)
	report, err := svc.Report(context.Background(), inequality.Query{})
	require.NoError(t, err, "failed loads are retried")
	assert.Len(t, report.Rows, 12)
}

func TestPricingService(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewPricingService(cfg, nil, nil)
	ctx := context.Background()

	params := svc.DefaultParams()
	assert.Equal(t, 60.0, params.Strike)

	quotes, err := svc.Quote(ctx, params, GridRequest{From: 50, To: 70, Step: 10})
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.InEpsilon(t, 1.4979297452123674, quotes[1].Price, 1e-9)

	grid, err := svc.Grid(GridRequest{})
	require.NoError(t, err)
	assert.Len(t, grid, 100001)

	_, err = svc.Quote(ctx, params, GridRequest{From: 10, To: 5, Step: 1})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	params.Sigma = 0
	_, err = svc.Quote(ctx, params, GridRequest{From: 0, To: 1, Step: 1})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	res, err := svc.Benchmark(ctx, svc.DefaultParams(), GridRequest{From: 0, To: 10, Step: 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Points)
}

func TestHealthService(t *testing.T) {
	cfg := newTestConfig(t)
	svc := NewHealthService(cfg, nil)
	ctx := context.Background()

	assert.Equal(t, "ok", svc.LivenessCheck(ctx).Status)

	ready := svc.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ready", ready.Checks["iris"].Status)
	assert.Equal(t, "ready", ready.Checks["income"].Status)

	empty := config.Default()
	empty.Paths.Root = t.TempDir()
	ready = NewHealthService(empty, nil).ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "missing", ready.Checks["titanic_train"].Status)
	assert.Equal(t, ServiceHealth{Status: "ready", Message: "bundled"}, ready.Checks["digits"])

	empty.Workflows.Datasets.DigitsFile = "elsewhere/digits.csv"
	ready = NewHealthService(empty, nil).ReadinessCheck(ctx)
	assert.Equal(t, "missing", ready.Checks["digits"].Status)

	assert.NotEmpty(t, svc.Version().Version)
}
