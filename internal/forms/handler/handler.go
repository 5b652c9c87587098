// Package handler exposes one POST endpoint per form type.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"praticai/internal/forms/models"
	"praticai/internal/forms/service"
	"praticai/pkg/platform/httputil"
	"praticai/pkg/requestcontext"
)

// Service runs the generation pipeline for a validated form.
type Service interface {
	Generate(ctx context.Context, form models.Form) (*service.Result, error)
}

// GenerateResponse is the body of every successful generation.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Guida     string `json:"guida"`
	GuidaHTML string `json:"guidaHtml"`
	PdfURL    string `json:"pdfUrl"`
	Message   string `json:"message"`
}

// Handler handles the form generation endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a forms Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the generation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/generate", generate[models.VatOpeningRequest](h))
	r.Post("/autocertificazione", generate[models.ResidenceRequest](h))
	r.Post("/autocertificazione-nascita", generate[models.BirthRequest](h))
	r.Post("/autocertificazione-stato-civile", generate[models.CivilStatusRequest](h))
}

// generate decodes and validates a T, then runs the pipeline.
func generate[T any, PT interface {
	*T
	models.Form
}](h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		form, ok := httputil.DecodeAndPrepare[T, PT](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}

		res, err := h.service.Generate(ctx, form)
		if err != nil {
			h.logger.ErrorContext(ctx, "generation request failed",
				"request_id", requestID,
				"form_type", form.Type(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, GenerateResponse{
			Success:   true,
			Guida:     res.Guide.Text,
			GuidaHTML: res.Guide.HTML,
			PdfURL:    res.Artifact.DownloadURL(),
			Message:   res.Message,
		})
	}
}
