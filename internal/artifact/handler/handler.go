// Package handler serves generated documents for download.
package handler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"praticai/internal/artifact"
	dErrors "praticai/pkg/domain-errors"
	"praticai/pkg/platform/httputil"
	"praticai/pkg/requestcontext"
)

// Service resolves a download ID to a file on disk.
type Service interface {
	Resolve(ctx context.Context, rawID string) (*artifact.Artifact, error)
}

// Handler handles GET /download/{id}.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a download Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the download route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/download/{id}", h.handleDownload)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	a, err := h.service.Resolve(ctx, id)
	if err != nil {
		h.logger.InfoContext(ctx, "download not found",
			"request_id", requestID,
			"artifact_id", id,
		)
		httputil.WriteError(w, err)
		return
	}

	f, err := os.Open(a.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Swept between lookup and open.
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "File non trovato: "+id))
			return
		}
		h.logger.ErrorContext(ctx, "failed to open artifact",
			"request_id", requestID,
			"path", a.Path,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open document"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to stat document"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	http.ServeContent(w, r, a.FileName, info.ModTime(), f)

	h.logger.InfoContext(ctx, "document downloaded",
		"request_id", requestID,
		"artifact_id", a.ID,
		"file_name", a.FileName,
	)
}
