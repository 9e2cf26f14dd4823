package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "featurelab/internal/errors"
	"featurelab/internal/files"
)

// FilesHandler lists the data files the workflows can read
type FilesHandler struct {
	lister       FileLister
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(lister FileLister, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FilesHandler {
	return &FilesHandler{
		lister:       lister,
		logger:       logger.With(slog.String("component", "files_handler")),
		errorHandler: errorHandler,
	}
}

// ListFiles handles GET /api/files
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	found, err := h.lister.FindAll()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if found == nil {
		found = []files.FileInfo{}
	}

	resp := map[string]interface{}{
		"files": found,
		"count": len(found),
	}
	if latest, ok := files.GetLatestFile(found); ok {
		resp["latest"] = latest.Name
	}
	render.JSON(w, r, resp)
}
