// Package document renders validated forms into PDF files.
//
// A Renderer fills the form's HTML template with pongo2, hands the HTML to a
// Converter and writes the resulting PDF atomically. A file either appears
// complete at its final path or not at all.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/flosch/pongo2/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"praticai/internal/forms/models"
	"praticai/pkg/platform/validation"
)

// Placeholder fills optional fields the user left blank.
const Placeholder = "Non specificato"

var (
	// ErrTemplateNotFound is a deployment error: the form has no template file.
	ErrTemplateNotFound = errors.New("document template not found")
	// ErrEmptyDocument means the converter produced no bytes.
	ErrEmptyDocument = errors.New("converter produced an empty document")
)

// Converter turns an HTML page into PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// Renderer produces PDF files from forms.
type Renderer struct {
	templatesDir string
	templates    *pongo2.TemplateSet
	converter    Converter
	logger       *slog.Logger
	timeout      time.Duration
	now          func() time.Time
	tracer       trace.Tracer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout bounds each conversion. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithClock overrides the clock used for the compilation date.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer reading templates from templatesDir.
func New(templatesDir string, converter Converter, opts ...Option) (*Renderer, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("templates directory %q: %w", templatesDir, err)
	}
	r := &Renderer{
		templatesDir: templatesDir,
		templates:    pongo2.NewSet("documents", loader),
		converter:    converter,
		logger:       slog.Default(),
		now:          time.Now,
		tracer:       otel.Tracer("praticai/document"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render writes the PDF for form to path, creating parent directories.
func (r *Renderer) Render(ctx context.Context, form models.Form, path string) (err error) {
	ctx, span := r.tracer.Start(ctx, "document.Render",
		trace.WithAttributes(attribute.String("form_type", string(form.Type()))),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
		}
		span.End()
	}()

	html, err := r.RenderHTML(form)
	if err != nil {
		r.logger.ErrorContext(ctx, "template rendering failed",
			"form_type", form.Type(),
			"error", err,
		)
		return err
	}

	pdf, err := r.convert(ctx, html)
	if err != nil {
		r.logger.ErrorContext(ctx, "pdf conversion failed",
			"form_type", form.Type(),
			"error", err,
		)
		return fmt.Errorf("convert %s: %w", form.Type(), err)
	}

	if err := writeAtomic(path, pdf); err != nil {
		r.logger.ErrorContext(ctx, "pdf write failed",
			"path", path,
			"error", err,
		)
		return err
	}

	r.logger.InfoContext(ctx, "pdf generated",
		"form_type", form.Type(),
		"path", path,
		"bytes", len(pdf),
	)
	return nil
}

// RenderHTML fills the form's template without converting it.
func (r *Renderer) RenderHTML(form models.Form) ([]byte, error) {
	name := form.Type().TemplateName()
	if _, err := os.Stat(filepath.Join(r.templatesDir, name)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	tpl, err := r.templates.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	out, err := tpl.ExecuteBytes(r.Data(form))
	if err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return out, nil
}

// Data builds the template context: every field by JSON name plus the
// derived display fields.
func (r *Renderer) Data(form models.Form) pongo2.Context {
	data := pongo2.Context{
		"data_compilazione": r.now().Format("02/01/2006"),
	}
	for _, f := range form.Fields() {
		value := f.Value
		if value == "" && f.Optional {
			value = Placeholder
		}
		data[f.Name] = value
		if f.Date {
			data[f.Name+"Formatted"] = validation.FormatDate(f.Value)
		}
	}

	switch req := form.(type) {
	case *models.VatOpeningRequest:
		data["regime_forfettario_checked"] = checked(req.RegimeFiscale == models.RegimeForfettario)
		data["regime_ordinario_checked"] = checked(req.RegimeFiscale == models.RegimeOrdinario)
	case *models.CivilStatusRequest:
		for _, status := range models.AllCivilStatuses {
			data["stato_"+string(status)+"_checked"] = checked(req.StatoCivile == status)
		}
		data["statoCivileLabel"] = req.StatoCivile.Label()
	}
	return data
}

func (r *Renderer) convert(ctx context.Context, html []byte) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	pdf, err := r.converter.Convert(ctx, html)
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyDocument
	}
	return pdf, nil
}

func checked(on bool) string {
	if on {
		return "checked"
	}
	return ""
}
