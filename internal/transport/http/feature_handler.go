package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "featurelab/internal/errors"
	"featurelab/internal/features"
	customMiddleware "featurelab/internal/middleware"
	"featurelab/internal/table"
	api "featurelab/pkg/contracts/api/v1"
)

// FeatureHandler exposes categorical encoding
type FeatureHandler struct {
	service      FeatureServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	query        *customMiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(service FeatureServiceInterface, validation *customMiddleware.ValidationMiddleware, query *customMiddleware.QueryParamValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FeatureHandler {
	return &FeatureHandler{
		service:      service,
		validation:   validation,
		query:        query,
		logger:       logger.With(slog.String("component", "feature_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the feature routes
func (h *FeatureHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(customMiddleware.ContentTypeValidator(h.errorHandler, "application/json")).
		Post("/vectorize", h.Vectorize)
	r.With(customMiddleware.ContentTypeValidator(h.errorHandler, "text/csv", "text/plain")).
		Post("/dummies", h.Dummies)
	return r
}

// Vectorize handles POST /api/features/vectorize
func (h *FeatureHandler) Vectorize(w http.ResponseWriter, r *http.Request) {
	var req api.VectorizeRequest
	if !h.validation.Decode(w, r, &req) {
		return
	}

	out, err := h.service.Vectorize(r.Context(), req.Records)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, out)
}

// Dummies handles POST /api/features/dummies. The body is a CSV table and
// the response is the encoded table, as CSV unless format=json.
func (h *FeatureHandler) Dummies(w http.ResponseWriter, r *http.Request) {
	q, format, ok := h.dummiesQuery(w, r)
	if !ok {
		return
	}

	t, err := table.LoadCSV(r.Body, table.LoadOptions{})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	encoded, err := h.service.Encode(r.Context(), t, features.DummyOptions{
		Columns:   q.Columns,
		Separator: q.Separator,
		DummyNA:   q.DummyNA,
		DropFirst: q.DropFirst,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "table encoded",
		slog.Int("rows", encoded.Nrow()),
		slog.Int("columns", encoded.Ncol()),
	)

	if format == formatJSON {
		render.JSON(w, r, encoded.Info())
		return
	}
	writeTableCSV(w, r, h.logger, encoded)
}

func (h *FeatureHandler) dummiesQuery(w http.ResponseWriter, r *http.Request) (api.DummiesQuery, string, bool) {
	var q api.DummiesQuery
	var ok bool

	if q.Columns, ok = h.query.ValidateStringList(w, r, "columns", 0); !ok {
		return q, "", false
	}
	q.Separator = r.URL.Query().Get("sep")
	if q.DummyNA, ok = h.query.ValidateBool(w, r, "dummy_na", false); !ok {
		return q, "", false
	}
	if q.DropFirst, ok = h.query.ValidateBool(w, r, "drop_first", false); !ok {
		return q, "", false
	}
	format, ok := h.query.ValidateEnum(w, r, "format", formats, formatCSV)
	if !ok {
		return q, "", false
	}

	if err := h.validation.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, "", false
	}
	return q, format, true
}
