package http

import (
	"encoding/csv"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "featurelab/internal/errors"
	"featurelab/internal/exporter"
	customMiddleware "featurelab/internal/middleware"
	"featurelab/internal/services"
	api "featurelab/pkg/contracts/api/v1"
)

// PricingHandler serves Black-Scholes put prices
type PricingHandler struct {
	service      PricingServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	query        *customMiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(service PricingServiceInterface, validation *customMiddleware.ValidationMiddleware, query *customMiddleware.QueryParamValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PricingHandler {
	return &PricingHandler{
		service:      service,
		validation:   validation,
		query:        query,
		logger:       logger.With(slog.String("component", "pricing_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the pricing routes
func (h *PricingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/put", h.GetPutQuotes)
	r.Post("/benchmark", h.Benchmark)
	return r
}

// GetPutQuotes handles GET /api/pricing/put. Contract parameters default to
// the configured contract and the grid to the configured spot grid.
func (h *PricingHandler) GetPutQuotes(w http.ResponseWriter, r *http.Request) {
	q, ok := h.putQuery(w, r)
	if !ok {
		return
	}

	quotes, err := h.service.Quote(r.Context(), q.PutParams, services.GridRequest{From: q.From, To: q.To, Step: q.Step})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if q.Format == formatCSV {
		w.Header().Set("Content-Type", contentTypeCSV)
		w.WriteHeader(http.StatusOK)

		cw := csv.NewWriter(w)
		_ = cw.Write(exporter.QuoteHeaders)
		for _, quote := range quotes {
			if err := cw.Write(exporter.QuoteRecord(quote)); err != nil {
				h.logger.ErrorContext(r.Context(), "failed to stream quotes", slog.String("error", err.Error()))
				return
			}
		}
		cw.Flush()
		return
	}

	render.JSON(w, r, api.PutQuoteResponse{Params: q.PutParams, Points: len(quotes), Quotes: quotes})
}

// Benchmark handles POST /api/pricing/benchmark over the configured contract
// and grid. An empty body uses the default replication count.
func (h *PricingHandler) Benchmark(w http.ResponseWriter, r *http.Request) {
	var req api.BenchmarkRequest
	if r.ContentLength != 0 {
		if !h.validation.Decode(w, r, &req) {
			return
		}
	}

	res, err := h.service.Benchmark(r.Context(), h.service.DefaultParams(), services.GridRequest{}, req.Replications)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.BenchmarkResponse{
		Points:        res.Points,
		Replications:  res.Replications,
		ElapsedMillis: float64(res.Elapsed.Microseconds()) / 1000,
		PerRepMillis:  float64(res.PerRep.Microseconds()) / 1000,
	})
}

func (h *PricingHandler) putQuery(w http.ResponseWriter, r *http.Request) (api.PutQuoteQuery, bool) {
	q := api.PutQuoteQuery{PutParams: h.service.DefaultParams()}
	var ok bool

	floats := []struct {
		param string
		dst   *float64
		min   float64
	}{
		{"strike", &q.Strike, 0},
		{"rate", &q.Rate, -1},
		{"yield", &q.Yield, -1},
		{"maturity", &q.Maturity, 0},
		{"sigma", &q.Sigma, 0},
		{"from", &q.From, 0},
		{"to", &q.To, 0},
		{"step", &q.Step, 0},
	}
	for _, f := range floats {
		if *f.dst, ok = h.query.ValidateFloat(w, r, f.param, f.min, math.MaxFloat64, *f.dst); !ok {
			return q, false
		}
	}

	if q.Format, ok = h.query.ValidateEnum(w, r, "format", formats, formatJSON); !ok {
		return q, false
	}

	if err := h.validation.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}
