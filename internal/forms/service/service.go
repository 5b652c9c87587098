// Package service runs the generation pipeline shared by every form type:
// render the PDF, register it for download, then draft the guide.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"praticai/internal/artifact"
	"praticai/internal/audit"
	"praticai/internal/forms/metrics"
	"praticai/internal/forms/models"
	"praticai/internal/guide"
	dErrors "praticai/pkg/domain-errors"
	"praticai/pkg/requestcontext"
)

// MessageGenerationFailed is the fixed client description of a render failure.
const MessageGenerationFailed = "Errore nella generazione del PDF"

// Renderer writes the PDF for a form to path.
type Renderer interface {
	Render(ctx context.Context, form models.Form, path string) error
}

// GuideDrafter produces the usage guide. It never fails; failures come back
// as a degraded guide.
type GuideDrafter interface {
	Draft(ctx context.Context, form models.Form) guide.Guide
}

// Artifacts allocates output paths and records generated files.
type Artifacts interface {
	Allocate(form models.Form) artifact.Artifact
	Register(ctx context.Context, a artifact.Artifact) error
}

// AuditPublisher receives generation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Result is what a successful generation returns to the handler.
type Result struct {
	Artifact artifact.Artifact
	Guide    guide.Guide
	Message  string
}

// Service generates documents.
type Service struct {
	renderer  Renderer
	guides    GuideDrafter
	artifacts Artifacts
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditor publishes generation events.
func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// New creates the generation service.
func New(renderer Renderer, guides GuideDrafter, artifacts Artifacts, opts ...Option) *Service {
	s := &Service{
		renderer:  renderer,
		guides:    guides,
		artifacts: artifacts,
		logger:    slog.Default(),
		tracer:    otel.Tracer("praticai/forms"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate renders form, registers the artifact and drafts the guide. The
// form must already be validated. A render failure returns a
// document_generation_failed error and no guide is drafted.
func (s *Service) Generate(ctx context.Context, form models.Form) (*Result, error) {
	formType := string(form.Type())
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "forms.Generate",
		trace.WithAttributes(attribute.String("form_type", formType)),
	)
	defer span.End()
	requestID := requestcontext.RequestID(ctx)

	a := s.artifacts.Allocate(form)
	span.SetAttributes(attribute.String("artifact_id", a.ID.String()))

	if err := s.renderer.Render(ctx, form, a.Path); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		s.logger.ErrorContext(ctx, "document generation failed",
			"request_id", requestID,
			"form_type", formType,
			"artifact_id", a.ID,
			"error", err,
		)
		s.metrics.IncrementFailure(formType, "render")
		s.emit(ctx, audit.ActionGenerationFailed, a, "render")
		return nil, dErrors.Wrap(err, dErrors.CodeDocumentGeneration, MessageGenerationFailed)
	}

	if err := s.artifacts.Register(ctx, a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		s.logger.ErrorContext(ctx, "artifact registration failed",
			"request_id", requestID,
			"artifact_id", a.ID,
			"error", err,
		)
		s.metrics.IncrementFailure(formType, "register")
		s.emit(ctx, audit.ActionGenerationFailed, a, "register")
		return nil, err
	}
	s.emit(ctx, audit.ActionDocumentGenerated, a, "")

	g := s.guides.Draft(ctx, form)
	s.metrics.IncrementGuide(formType, g.Degraded)
	if g.Degraded {
		s.emit(ctx, audit.ActionGuideDegraded, a, g.Reason)
	}

	s.metrics.IncrementGenerated(formType)
	s.metrics.ObserveGenerateLatency(formType, time.Since(start))
	s.logger.InfoContext(ctx, "document generated",
		"request_id", requestID,
		"form_type", formType,
		"artifact_id", a.ID,
		"guide_degraded", g.Degraded,
	)

	return &Result{
		Artifact: a,
		Guide:    g,
		Message:  form.Type().SuccessMessage(),
	}, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, a artifact.Artifact, reason string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:     action,
		ArtifactID: a.ID.String(),
		FormType:   string(a.FormType),
		Reason:     reason,
	})
}
