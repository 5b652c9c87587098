// Package service tracks generated artifacts, resolves download requests and
// sweeps expired files.
package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"praticai/internal/artifact"
	"praticai/internal/artifact/files"
	"praticai/internal/artifact/metrics"
	"praticai/internal/audit"
	"praticai/internal/forms/models"
	dErrors "praticai/pkg/domain-errors"
	"praticai/pkg/platform/sentinel"
	"praticai/pkg/requestcontext"
)

// Registry maps artifact IDs to files. Implementations return
// sentinel.ErrNotFound for unknown or expired IDs.
type Registry interface {
	Register(ctx context.Context, a artifact.Artifact) error
	Resolve(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// expirer is implemented by registries that can drop old rows in bulk.
type expirer interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPublisher receives artifact lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Defaults for the cleanup sweeper.
const (
	DefaultRetention     = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Service is shared by every generation handler and the download handler.
type Service struct {
	registry  Registry
	dir       *files.Dir
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditPublisher
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
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

// WithAuditor publishes download and sweep events.
func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithRetention sets how long files are kept. Zero disables the sweeper.
func WithRetention(retention, interval time.Duration) Option {
	return func(s *Service) {
		s.retention = retention
		s.interval = interval
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the artifact service over registry and the output directory.
func New(registry Registry, dir *files.Dir, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		dir:       dir,
		logger:    slog.Default(),
		retention: DefaultRetention,
		interval:  DefaultSweepInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultSweepInterval
	}
	return s
}

// Allocate assigns a fresh ID and output path for form. Nothing is written.
func (s *Service) Allocate(form models.Form) artifact.Artifact {
	id := uuid.New()
	surname, name := form.Subject()
	path, fileName := s.dir.PathFor(form.Type(), surname, name, id)
	return artifact.Artifact{
		ID:        id,
		FormType:  form.Type(),
		Path:      path,
		FileName:  fileName,
		CreatedAt: s.now(),
	}
}

// Register records a generated artifact so it can be downloaded.
func (s *Service) Register(ctx context.Context, a artifact.Artifact) error {
	if err := s.registry.Register(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register artifact")
	}
	return nil
}

// Resolve finds the file for a download ID: registry first, then an exact
// file-name scan of the output directory.
func (s *Service) Resolve(ctx context.Context, rawID string) (*artifact.Artifact, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		s.metrics.IncrementDownload("not_found")
		return nil, notFound(rawID)
	}

	a, err := s.registry.Resolve(ctx, id)
	switch {
	case err == nil && s.dir.Exists(a.Path):
		s.metrics.IncrementDownload("registry")
		s.emit(ctx, audit.ActionDocumentDownloaded, a, "")
		return a, nil
	case err == nil:
		s.logger.WarnContext(ctx, "registered artifact missing on disk",
			"request_id", requestcontext.RequestID(ctx),
			"artifact_id", id,
			"path", a.Path,
		)
	case !errors.Is(err, sentinel.ErrNotFound):
		s.logger.WarnContext(ctx, "artifact registry lookup failed, scanning output directory",
			"request_id", requestcontext.RequestID(ctx),
			"artifact_id", id,
			"error", err,
		)
	}

	path, err := s.dir.Find(id)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "output directory scan failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		s.metrics.IncrementDownload("not_found")
		return nil, notFound(rawID)
	}

	found := &artifact.Artifact{ID: id, Path: path, FileName: filepath.Base(path)}
	s.metrics.IncrementDownload("scan")
	s.emit(ctx, audit.ActionDocumentDownloaded, found, "scan")
	return found, nil
}

// Sweep deletes files older than the retention window and forgets their
// registry entries. It returns the number of files removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)

	stale, err := s.dir.OlderThan(cutoff)
	if err != nil {
		s.metrics.IncrementSweepError()
		return 0, err
	}

	removed := 0
	for _, f := range stale {
		if err := s.dir.Remove(f.Path); err != nil {
			s.logger.WarnContext(ctx, "failed to remove expired artifact", "path", f.Path, "error", err)
			continue
		}
		if err := s.registry.Remove(ctx, f.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to forget expired artifact", "artifact_id", f.ID, "error", err)
		}
		removed++
		s.emit(ctx, audit.ActionDocumentSwept, &artifact.Artifact{ID: f.ID, Path: f.Path}, "")
	}

	if ex, ok := s.registry.(expirer); ok {
		if _, err := ex.DeleteBefore(ctx, cutoff); err != nil {
			s.logger.WarnContext(ctx, "failed to prune artifact registry", "error", err)
		}
	}

	s.metrics.AddSwept(removed)
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired artifacts swept", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Run sweeps on every interval tick until ctx is cancelled. It returns
// immediately when retention is disabled.
func (s *Service) Run(ctx context.Context) error {
	if s.retention <= 0 {
		s.logger.InfoContext(ctx, "artifact cleanup disabled")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "artifact sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, a *artifact.Artifact, reason string) {
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

func notFound(id string) error {
	return dErrors.New(dErrors.CodeNotFound, "File non trovato: "+id)
}
