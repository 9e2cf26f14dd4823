package http

import (
	"encoding/csv"
	"log/slog"
	"net/http"

	"featurelab/internal/table"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"

	contentTypeCSV = "text/csv; charset=utf-8"
)

var formats = []string{formatJSON, formatCSV}

// writeTableCSV streams t as CSV. Headers are already sent when a write
// fails, so the error is only logged.
func writeTableCSV(w http.ResponseWriter, r *http.Request, logger *slog.Logger, t *table.Table) {
	w.Header().Set("Content-Type", contentTypeCSV)
	w.WriteHeader(http.StatusOK)
	if err := t.WriteCSV(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to stream table", slog.String("error", err.Error()))
	}
}

// writeRecordsCSV streams a header and records as CSV
func writeRecordsCSV(w http.ResponseWriter, r *http.Request, logger *slog.Logger, header []string, records [][]string) {
	w.Header().Set("Content-Type", contentTypeCSV)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		logger.ErrorContext(r.Context(), "failed to stream records", slog.String("error", err.Error()))
		return
	}
	if err := cw.WriteAll(records); err != nil {
		logger.ErrorContext(r.Context(), "failed to stream records", slog.String("error", err.Error()))
	}
}
