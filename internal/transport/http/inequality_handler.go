package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "featurelab/internal/errors"
	"featurelab/internal/exporter"
	"featurelab/internal/inequality"
	customMiddleware "featurelab/internal/middleware"
	api "featurelab/pkg/contracts/api/v1"
	"featurelab/pkg/contracts/domain"
)

const maxQueryItems = 200

// InequalityHandler serves income inequality reports
type InequalityHandler struct {
	service      InequalityServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	query        *customMiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInequalityHandler creates a new inequality handler
func NewInequalityHandler(service InequalityServiceInterface, validation *customMiddleware.ValidationMiddleware, query *customMiddleware.QueryParamValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InequalityHandler {
	return &InequalityHandler{
		service:      service,
		validation:   validation,
		query:        query,
		logger:       logger.With(slog.String("component", "inequality_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the inequality routes
func (h *InequalityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetReport)
	r.Get("/presets", h.ListPresets)
	r.Get("/presets/{name}", h.GetPreset)
	return r
}

// GetReport handles GET /api/inequality?years=2014&countries=India,China
func (h *InequalityHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	var q api.InequalityQuery
	var ok bool

	if q.Years, ok = h.query.ValidateIntList(w, r, "years", maxQueryItems); !ok {
		return
	}
	if q.Countries, ok = h.query.ValidateStringList(w, r, "countries", maxQueryItems); !ok {
		return
	}
	if q.Format, ok = h.query.ValidateEnum(w, r, "format", formats, formatJSON); !ok {
		return
	}
	if err := h.validation.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Report(r.Context(), inequality.Query{Years: q.Years, Countries: q.Countries})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, q.Format, report)
}

// ListPresets handles GET /api/inequality/presets
func (h *InequalityHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := inequality.Presets()
	out := api.PresetListResponse{Presets: make([]api.PresetInfo, 0, len(presets))}
	for _, p := range presets {
		out.Presets = append(out.Presets, api.PresetInfo{
			Name:      p.Name,
			Title:     p.Title,
			Years:     p.Query.Years,
			Countries: p.Query.Countries,
		})
	}
	render.JSON(w, r, out)
}

// GetPreset handles GET /api/inequality/presets/{name}
func (h *InequalityHandler) GetPreset(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", formats, formatJSON)
	if !ok {
		return
	}

	report, err := h.service.Preset(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, format, report)
}

func (h *InequalityHandler) respond(w http.ResponseWriter, r *http.Request, format string, report *domain.IncomeReport) {
	h.logger.DebugContext(r.Context(), "inequality report served",
		slog.String("query", report.Query),
		slog.Int("rows", len(report.Rows)),
		slog.String("format", format),
	)

	if format == formatCSV {
		writeRecordsCSV(w, r, h.logger, exporter.IncomeHeaders, exporter.IncomeRecords(report.Rows))
		return
	}
	render.JSON(w, r, report)
}
