package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "featurelab/internal/errors"
	customMiddleware "featurelab/internal/middleware"
	"featurelab/internal/services"
	api "featurelab/pkg/contracts/api/v1"
)

type datasetNameKey struct{}

// DatasetHandler serves the toy datasets
type DatasetHandler struct {
	service      DatasetServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListDatasets)
	r.Route("/{name}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Post("/split", h.SplitDataset)
	})
	return r
}

// DatasetCtx rejects unknown dataset names before the handler runs
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(chi.URLParam(r, "name"))
		known := false
		for _, n := range h.service.Names() {
			if n == name {
				known = true
				break
			}
		}
		if !known {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusNotFound,
				apierrors.ErrDatasetNotFound.ErrorCode,
				"Dataset not found",
				map[string]interface{}{"dataset": name, "available": h.service.Names()},
			))
			return
		}

		ctx := context.WithValue(r.Context(), datasetNameKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListDatasets handles GET /api/datasets
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.DatasetListResponse{Datasets: h.service.Names()})
}

// GetDataset handles GET /api/datasets/{name}
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	name := r.Context().Value(datasetNameKey{}).(string)

	summary, err := h.service.Describe(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// SplitDataset handles POST /api/datasets/{name}/split. An empty body uses
// the configured ratio and seed.
func (h *DatasetHandler) SplitDataset(w http.ResponseWriter, r *http.Request) {
	name := r.Context().Value(datasetNameKey{}).(string)

	var req api.SplitRequest
	if r.ContentLength != 0 {
		if !h.validation.Decode(w, r, &req) {
			return
		}
	}

	_, _, summary, err := h.service.Split(r.Context(), services.SplitRequest{
		Dataset:   name,
		TestRatio: req.TestRatio,
		Seed:      req.Seed,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset split served",
		slog.String("dataset", name),
		slog.String("request_id", customMiddleware.GetRequestID(r.Context())),
	)
	render.JSON(w, r, api.SplitResponse{SplitSummary: summary})
}
