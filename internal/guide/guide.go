// Package guide drafts the personalized usage guide returned with every
// generated document. Drafting never fails the request: any error turns into
// a degraded guide that still confirms the PDF was generated.
package guide

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"praticai/internal/forms/models"
	"praticai/pkg/platform/circuit"
	"praticai/pkg/platform/sentinel"
	"praticai/pkg/platform/validation"
)

//go:embed prompts/*.txt
var promptFS embed.FS

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
	civilMaxTokens     = 2500

	notSpecified = "Non specificato"
	notProvided  = "Non fornito"
	noFacts      = "Nessun dato aggiuntivo"
)

// Reasons shown in degraded guides.
const (
	ReasonMissingKey  = "API key mancante"
	ReasonTimeout     = "tempo di risposta scaduto"
	ReasonEmpty       = "risposta vuota dal servizio"
	ReasonUnavailable = "servizio temporaneamente non disponibile"
)

var personas = map[models.FormType]string{
	models.FormVatOpening:  "Sei un esperto consulente fiscale italiano specializzato in adempimenti per freelance e microimprese. Rispondi sempre in italiano con informazioni accurate e aggiornate.",
	models.FormResidence:   "Sei un esperto consulente di pratiche burocratiche italiane specializzato in autocertificazioni. Rispondi sempre in italiano con informazioni accurate e aggiornate sulla normativa italiana.",
	models.FormBirth:       "Sei un esperto consulente di pratiche burocratiche italiane specializzato in autocertificazioni di nascita. Rispondi sempre in italiano con informazioni accurate e aggiornate sulla normativa italiana.",
	models.FormCivilStatus: "Sei un esperto consulente di pratiche burocratiche italiane specializzato in autocertificazioni di stato civile. Rispondi sempre in italiano con informazioni accurate e aggiornate sulla normativa italiana.",
}

// ErrEmptyDraft is returned when the model answers with no text.
var ErrEmptyDraft = errors.New("empty draft")

// DraftRequest is one completion call.
type DraftRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Drafter calls a language model.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// Guide is the drafted text, its sanitized HTML rendering and whether it is
// the degraded fallback.
type Guide struct {
	Text     string
	HTML     string
	Degraded bool
	Reason   string
}

// Service assembles prompts and drafts guides.
type Service struct {
	drafter Drafter
	prompts map[models.FormType]*pongo2.Template
	logger  *slog.Logger
	timeout time.Duration
	breaker *circuit.Breaker
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each drafting call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithBreaker stops calling the drafter while b is open; guides are degraded
// without waiting for the timeout.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

// New parses the embedded prompt templates.
func New(drafter Drafter, opts ...Option) (*Service, error) {
	s := &Service{
		drafter: drafter,
		prompts: make(map[models.FormType]*pongo2.Template, len(models.AllFormTypes)),
		logger:  slog.Default(),
		tracer:  otel.Tracer("praticai/guide"),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, ft := range models.AllFormTypes {
		raw, err := promptFS.ReadFile("prompts/" + string(ft) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("prompt for %s: %w", ft, err)
		}
		tpl, err := pongo2.FromString(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse prompt for %s: %w", ft, err)
		}
		s.prompts[ft] = tpl
	}
	return s, nil
}

// Draft returns the guide for form. It never returns an error; failures
// produce a degraded guide.
func (s *Service) Draft(ctx context.Context, form models.Form) Guide {
	ctx, span := s.tracer.Start(ctx, "guide.Draft",
		trace.WithAttributes(attribute.String("form_type", string(form.Type()))),
	)
	defer span.End()

	req, err := s.Request(form)
	if err != nil {
		s.logger.ErrorContext(ctx, "prompt assembly failed", "form_type", form.Type(), "error", err)
		span.RecordError(err)
		return s.degraded(form, ReasonUnavailable)
	}

	if s.breaker != nil && !s.breaker.Allow() {
		s.logger.WarnContext(ctx, "guide drafting skipped, circuit open", "form_type", form.Type())
		span.SetAttributes(attribute.Bool("degraded", true))
		return s.degraded(form, ReasonUnavailable)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.drafter.Draft(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyDraft
	}
	s.record(ctx, err)
	if err != nil {
		reason := reasonFor(err)
		s.logger.WarnContext(ctx, "guide drafting failed, returning degraded guide",
			"form_type", form.Type(),
			"reason", reason,
			"error", err,
		)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("degraded", true))
		return s.degraded(form, reason)
	}

	text = strings.TrimSpace(text)
	return Guide{Text: text, HTML: s.html(ctx, text)}
}

// record feeds the breaker. A missing credential is configuration, not an
// outage, and is not counted.
func (s *Service) record(ctx context.Context, err error) {
	if s.breaker == nil || errors.Is(err, sentinel.ErrUnavailable) {
		return
	}
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "guide drafter recovered", "breaker", s.breaker.Name())
		}
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "guide drafter circuit opened", "breaker", s.breaker.Name())
	}
}

// Request assembles the completion request for form.
func (s *Service) Request(form models.Form) (DraftRequest, error) {
	tpl, ok := s.prompts[form.Type()]
	if !ok {
		return DraftRequest{}, fmt.Errorf("no prompt for form type %q", form.Type())
	}
	prompt, err := tpl.Execute(promptData(form))
	if err != nil {
		return DraftRequest{}, fmt.Errorf("execute prompt: %w", err)
	}

	maxTokens := defaultMaxTokens
	if form.Type() == models.FormCivilStatus {
		maxTokens = civilMaxTokens
	}
	return DraftRequest{
		System:      personas[form.Type()],
		Prompt:      strings.TrimSpace(prompt),
		Temperature: defaultTemperature,
		MaxTokens:   maxTokens,
	}, nil
}

// DegradedText is the fallback guide shown when drafting fails.
func DegradedText(ft models.FormType, reason string) string {
	return fmt.Sprintf("⚠️ Guida AI non disponibile: %s. %s", reason, ft.Confirmation())
}

func (s *Service) degraded(form models.Form, reason string) Guide {
	text := DegradedText(form.Type(), reason)
	return Guide{
		Text:     text,
		HTML:     s.html(context.Background(), text),
		Degraded: true,
		Reason:   reason,
	}
}

func (s *Service) html(ctx context.Context, text string) string {
	out, err := ToHTML(text)
	if err != nil {
		s.logger.WarnContext(ctx, "guide markdown conversion failed", "error", err)
		return ""
	}
	return out
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable):
		return ReasonMissingKey
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrEmptyDraft):
		return ReasonEmpty
	default:
		return ReasonUnavailable
	}
}

// promptData is the form's key-value view with dates as DD/MM/YYYY and
// blanks replaced by placeholders.
func promptData(form models.Form) pongo2.Context {
	data := pongo2.Context{}
	for _, f := range form.Fields() {
		value := f.Value
		if f.Date {
			value = validation.FormatDate(value)
		}
		if value == "" && f.Optional {
			value = notSpecified
			if f.Name == "telefono" {
				value = notProvided
			}
		}
		data[f.Name] = value
	}

	if req, ok := form.(*models.CivilStatusRequest); ok {
		data["statoCivile"] = req.StatoCivile.Label()
		data["datiAggiuntivi"] = noFacts
		if facts := req.Facts(); len(facts) > 0 {
			data["datiAggiuntivi"] = strings.Join(facts, "; ")
		}
	}
	return data
}
