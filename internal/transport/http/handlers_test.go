package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"featurelab/internal/datasets"
	apierrors "featurelab/internal/errors"
	"featurelab/internal/features"
	"featurelab/internal/files"
	"featurelab/internal/inequality"
	customMiddleware "featurelab/internal/middleware"
	"featurelab/internal/pricing"
	"featurelab/internal/services"
	"featurelab/internal/table"
	"featurelab/pkg/contracts"
	"featurelab/pkg/contracts/domain"
)

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Names() []string {
	return []string{"digits", "iris"}
}

func (m *MockDatasetService) Describe(ctx context.Context, name string) (domain.DatasetSummary, error) {
	args := m.Called(name)
	return args.Get(0).(domain.DatasetSummary), args.Error(1)
}

func (m *MockDatasetService) Split(ctx context.Context, req services.SplitRequest) (*datasets.Bunch, *datasets.Bunch, domain.SplitSummary, error) {
	args := m.Called(req)
	return nil, nil, args.Get(0).(domain.SplitSummary), args.Error(1)
}

// MockFeatureService is a mock implementation of FeatureServiceInterface
type MockFeatureService struct {
	mock.Mock
}

func (m *MockFeatureService) Encode(ctx context.Context, t *table.Table, opts features.DummyOptions) (*table.Table, error) {
	args := m.Called(t.Names(), opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}

func (m *MockFeatureService) Vectorize(ctx context.Context, records []map[string]any) (*domain.VectorizedRecords, error) {
	args := m.Called(len(records))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VectorizedRecords), args.Error(1)
}

// MockInequalityService is a mock implementation of InequalityServiceInterface
type MockInequalityService struct {
	mock.Mock
}

func (m *MockInequalityService) Report(ctx context.Context, q inequality.Query) (*domain.IncomeReport, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeReport), args.Error(1)
}

func (m *MockInequalityService) Preset(ctx context.Context, name string) (*domain.IncomeReport, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeReport), args.Error(1)
}

// MockPricingService is a mock implementation of PricingServiceInterface
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) DefaultParams() domain.PutParams {
	return domain.PutParams{Strike: 60, Rate: .01, Yield: .02, Maturity: 1, Sigma: .05}
}

func (m *MockPricingService) Quote(ctx context.Context, params domain.PutParams, grid services.GridRequest) ([]domain.PutQuote, error) {
	args := m.Called(params, grid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PutQuote), args.Error(1)
}

func (m *MockPricingService) Benchmark(ctx context.Context, params domain.PutParams, grid services.GridRequest, reps int) (pricing.BenchmarkResult, error) {
	args := m.Called(reps)
	return args.Get(0).(pricing.BenchmarkResult), args.Error(1)
}

type stubHealth struct {
	ready string
}

func (s stubHealth) LivenessCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok"}
}

func (s stubHealth) ReadinessCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: s.ready}
}

func (s stubHealth) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

type stubLister struct {
	files []files.FileInfo
	err   error
}

func (s stubLister) FindAll() ([]files.FileInfo, error) {
	return s.files, s.err
}

type handlerDeps struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *customMiddleware.ValidationMiddleware
	query        *customMiddleware.QueryParamValidator
}

func newDeps() handlerDeps {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eh := apierrors.NewErrorHandler(logger, false)
	return handlerDeps{
		logger:       logger,
		errorHandler: eh,
		validation:   customMiddleware.NewValidationMiddleware(logger, eh),
		query:        customMiddleware.NewQueryParamValidator(logger, eh),
	}
}

func serve(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestDatasetHandler(t *testing.T) {
	deps := newDeps()
	svc := &MockDatasetService{}
	h := NewDatasetHandler(svc, deps.validation, deps.logger, deps.errorHandler).Routes()

	seed := uint64(7)
	svc.On("Describe", "iris").Return(domain.DatasetSummary{Name: "iris", Samples: 150, Features: 4}, nil)
	svc.On("Split", services.SplitRequest{Dataset: "iris"}).
		Return(domain.SplitSummary{Dataset: "iris", TrainSamples: 112, TestSamples: 38}, nil)
	svc.On("Split", services.SplitRequest{Dataset: "digits", TestRatio: 0.5, Seed: &seed}).
		Return(domain.SplitSummary{Dataset: "digits", Seed: 7, TrainSamples: 20, TestSamples: 20}, nil)

	t.Run("list", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{"digits", "iris"}, decodeJSON(t, rec)["datasets"])
	})

	t.Run("describe", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/IRIS", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 150, decodeJSON(t, rec)["samples"])
	})

	t.Run("unknown dataset", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/wine", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "DATASET_NOT_FOUND", decodeJSON(t, rec)["error_code"])
	})

	t.Run("split defaults", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/iris/split", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 38, decodeJSON(t, rec)["test_samples"])
	})

	t.Run("split with body", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/digits/split", "application/json", `{"test_ratio":0.5,"seed":7}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 7, decodeJSON(t, rec)["seed"])
	})

	t.Run("split invalid ratio", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/iris/split", "application/json", `{"test_ratio":1.5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestFeatureHandlerVectorize(t *testing.T) {
	deps := newDeps()
	svc := &MockFeatureService{}
	h := NewFeatureHandler(svc, deps.validation, deps.query, deps.logger, deps.errorHandler).Routes()

	svc.On("Vectorize", 2).Return(&domain.VectorizedRecords{
		FeatureNames: []string{"city=Dubai", "city=London", "temperature"},
		Matrix:       [][]float64{{1, 0, 33}, {0, 1, 12}},
	}, nil)

	rec := serve(t, h, http.MethodPost, "/vectorize", "application/json",
		`{"records":[{"city":"Dubai","temperature":33},{"city":"London","temperature":12}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Len(t, body["feature_names"], 3)

	rec = serve(t, h, http.MethodPost, "/vectorize", "application/json", `{"records":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPost, "/vectorize", "text/csv", `a,b`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	svc.AssertExpectations(t)
}

func TestFeatureHandlerDummies(t *testing.T) {
	deps := newDeps()
	svc := &MockFeatureService{}
	h := NewFeatureHandler(svc, deps.validation, deps.query, deps.logger, deps.errorHandler).Routes()

	encoded, err := table.LoadCSV(strings.NewReader("n,cat_a,cat_b\n1,1,0\n2,0,1\n"), table.LoadOptions{})
	require.NoError(t, err)

	svc.On("Encode", []string{"cat", "n"}, features.DummyOptions{Separator: ".", DropFirst: true}).Return(encoded, nil)
	svc.On("Encode", []string{"cat", "n"}, features.DummyOptions{Columns: []string{"nope"}}).
		Return(nil, apierrors.NewAppValidationError(`column "nope" not found`))

	body := "cat,n\na,1\nb,2\n"

	t.Run("csv", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/dummies?sep=.&drop_first=true", "text/csv", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
		assert.Equal(t, "n,cat_a,cat_b\n1,1,0\n2,0,1\n", rec.Body.String())
	})

	t.Run("json", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/dummies?sep=.&drop_first=true&format=json", "text/csv", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 2, decodeJSON(t, rec)["rows"])
	})

	t.Run("service error", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/dummies?columns=nope", "text/csv", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad flag", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/dummies?dummy_na=perhaps", "text/csv", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestInequalityHandler(t *testing.T) {
	deps := newDeps()
	svc := &MockInequalityService{}
	h := NewInequalityHandler(svc, deps.validation, deps.query, deps.logger, deps.errorHandler).Routes()

	report := &domain.IncomeReport{
		Years:     []int{2014},
		Countries: []string{"India"},
		Rows: []domain.IncomeRow{
			{Country: "India", Year: 2014, Decile1: 500, Decile10: 7000, InequalityRatio: 14},
		},
	}
	svc.On("Report", inequality.Query{Years: []int{2014}, Countries: []string{"India"}}).Return(report, nil)
	svc.On("Preset", "south-asia").Return(&domain.IncomeReport{Query: "south-asia", Rows: report.Rows}, nil)
	svc.On("Preset", "nowhere").Return(nil, apierrors.NewNotFoundError("preset nowhere"))

	t.Run("json", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/?years=2014&countries=India", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		rows := decodeJSON(t, rec)["rows"].([]any)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 14, rows[0].(map[string]any)["inequality_ratio"])
	})

	t.Run("csv", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/?years=2014&countries=India&format=csv", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[1], "India")
	})

	t.Run("bad years", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/?years=twenty", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("presets", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/presets", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeJSON(t, rec)["presets"])
	})

	t.Run("preset", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/presets/south-asia", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "south-asia", decodeJSON(t, rec)["query"])
	})

	t.Run("unknown preset", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/presets/nowhere", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestPricingHandler(t *testing.T) {
	deps := newDeps()
	svc := &MockPricingService{}
	h := NewPricingHandler(svc, deps.validation, deps.query, deps.logger, deps.errorHandler).Routes()

	quotes := []domain.PutQuote{{Spot: 50, Price: 10.393094016434333}, {Spot: 60, Price: 1.4979297452123674}}
	svc.On("Quote", svc.DefaultParams(), services.GridRequest{From: 50, To: 60, Step: 10}).Return(quotes, nil)

	custom := svc.DefaultParams()
	custom.Sigma = 0.2
	svc.On("Quote", custom, services.GridRequest{}).Return(quotes[:1], nil)
	svc.On("Benchmark", 0).Return(pricing.BenchmarkResult{
		Points: 100001, Replications: 100, Elapsed: 2 * time.Second, PerRep: 20 * time.Millisecond,
	}, nil)
	svc.On("Benchmark", 5).Return(pricing.BenchmarkResult{Points: 100001, Replications: 5}, nil)

	t.Run("json", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/put?from=50&to=60&step=10", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.EqualValues(t, 2, body["points"])
		assert.EqualValues(t, 60, body["params"].(map[string]any)["strike"])
	})

	t.Run("csv", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/put?from=50&to=60&step=10&format=csv", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "spot,price\n50,10.393094016434333\n60,1.4979297452123674\n", rec.Body.String())
	})

	t.Run("override sigma", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/put?sigma=0.2", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		for _, target := range []string{"/put?strike=0", "/put?sigma=abc", "/put?from=-1", "/put?format=xml"} {
			rec := serve(t, h, http.MethodGet, target, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("benchmark", func(t *testing.T) {
		rec := serve(t, h, http.MethodPost, "/benchmark", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.EqualValues(t, 100, body["replications"])
		assert.EqualValues(t, 20, body["per_replication_ms"])

		rec = serve(t, h, http.MethodPost, "/benchmark", "application/json", `{"replications":5}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve(t, h, http.MethodPost, "/benchmark", "application/json", `{"replications":5000}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	deps := newDeps()

	tests := []struct {
		name     string
		ready    string
		path     string
		wantCode int
	}{
		{"liveness", "ready", "/healthz", http.StatusOK},
		{"ready", "ready", "/readyz", http.StatusOK},
		{"not ready", "not_ready", "/readyz", http.StatusServiceUnavailable},
		{"version", "ready", "/version", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(stubHealth{ready: tt.ready}, deps.logger)
			r := chi.NewRouter()
			r.Get("/healthz", h.LivenessCheck)
			r.Get("/readyz", h.ReadinessCheck)
			r.Get("/version", h.Version)

			rec := serve(t, r, http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestFilesHandler(t *testing.T) {
	deps := newDeps()
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	h := NewFilesHandler(stubLister{files: []files.FileInfo{
		{Path: "/data/a.csv", Name: "a.csv", Format: ".csv", ModTime: older},
		{Path: "/data/b.xlsx", Name: "b.xlsx", Format: ".xlsx", ModTime: older.Add(time.Hour)},
	}}, deps.logger, deps.errorHandler)

	rec := serve(t, http.HandlerFunc(h.ListFiles), http.MethodGet, "/api/files", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "b.xlsx", body["latest"])

	failing := NewFilesHandler(stubLister{err: apierrors.NewNotFoundError("directory data")}, deps.logger, deps.errorHandler)
	rec = serve(t, http.HandlerFunc(failing.ListFiles), http.MethodGet, "/api/files", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
