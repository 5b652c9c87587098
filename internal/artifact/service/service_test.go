package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"praticai/internal/artifact"
	"praticai/internal/artifact/files"
	"praticai/internal/artifact/metrics"
	"praticai/internal/artifact/store/memory"
	"praticai/internal/audit"
	"praticai/internal/forms/models"
	dErrors "praticai/pkg/domain-errors"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Emit(_ context.Context, event audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *recordingAuditor) actions() []audit.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Action, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	root     string
	now      time.Time
	registry *memory.Store
	metrics  *metrics.Metrics
	auditor  *recordingAuditor
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.root = s.T().TempDir()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.registry = memory.New(100, time.Hour)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.auditor = &recordingAuditor{}
	s.service = New(s.registry, files.New(s.root),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditor(s.auditor),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) residence() *models.ResidenceRequest {
	return &models.ResidenceRequest{
		Nome:               "Mario",
		Cognome:            "Rossi",
		CodiceFiscale:      "RSSMRA85M01H501Z",
		LuogoNascita:       "Roma",
		DataNascita:        "1985-08-01",
		ComuneResidenza:    "Milano",
		IndirizzoResidenza: "Via Roma 1",
	}
}

func (s *ServiceSuite) writeFile(path string, modTime time.Time) {
	s.Require().NoError(os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	s.Require().NoError(os.Chtimes(path, modTime, modTime))
}

func (s *ServiceSuite) TestAllocate() {
	a := s.service.Allocate(s.residence())

	s.NotEqual(uuid.Nil, a.ID)
	s.Equal(models.FormResidence, a.FormType)
	s.Equal("autocertificazione_Rossi_Mario_"+a.ID.String()+".pdf", a.FileName)
	s.Equal(filepath.Join(s.root, a.FileName), a.Path)
	s.Equal(s.now, a.CreatedAt)

	other := s.service.Allocate(s.residence())
	s.NotEqual(a.ID, other.ID)
}

func (s *ServiceSuite) TestResolve() {
	s.Run("registered artifact on disk", func() {
		a := s.service.Allocate(s.residence())
		s.writeFile(a.Path, s.now)
		s.Require().NoError(s.service.Register(s.ctx, a))

		got, err := s.service.Resolve(s.ctx, a.ID.String())
		s.Require().NoError(err)
		s.Equal(a.Path, got.Path)
		s.Equal(a.FileName, got.FileName)
		s.Equal(float64(1), promtest.ToFloat64(s.metrics.Downloads.WithLabelValues("registry")))
		s.Contains(s.auditor.actions(), audit.ActionDocumentDownloaded)
	})

	s.Run("unregistered file found by exact name", func() {
		id := uuid.New()
		path := filepath.Join(s.root, files.FileName("aa912", "Bianchi", "Anna", id))
		s.writeFile(path, s.now)

		got, err := s.service.Resolve(s.ctx, id.String())
		s.Require().NoError(err)
		s.Equal(path, got.Path)
		s.Equal(filepath.Base(path), got.FileName)
		s.Equal(float64(1), promtest.ToFloat64(s.metrics.Downloads.WithLabelValues("scan")))
	})

	s.Run("registered artifact whose file is gone", func() {
		a := s.service.Allocate(s.residence())
		s.Require().NoError(s.service.Register(s.ctx, a))

		_, err := s.service.Resolve(s.ctx, a.ID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("id that is only a substring of a file name", func() {
		id := uuid.New()
		s.writeFile(filepath.Join(s.root, "aa912_Verdi_Luca_"+id.String()+"0.pdf"), s.now)

		_, err := s.service.Resolve(s.ctx, id.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown id", func() {
		_, err := s.service.Resolve(s.ctx, uuid.NewString())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed id", func() {
		_, err := s.service.Resolve(s.ctx, "../../etc/passwd")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestSweep() {
	old := s.service.Allocate(s.residence())
	s.writeFile(old.Path, s.now.Add(-2*time.Hour))
	s.Require().NoError(s.service.Register(s.ctx, old))

	fresh := s.service.Allocate(s.residence())
	s.writeFile(fresh.Path, s.now.Add(-10*time.Minute))
	s.Require().NoError(s.service.Register(s.ctx, fresh))

	stray := filepath.Join(s.root, "notes.txt")
	s.writeFile(stray, s.now.Add(-48*time.Hour))

	removed, err := s.service.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	s.NoFileExists(old.Path)
	s.FileExists(fresh.Path)
	s.FileExists(stray)

	_, err = s.service.Resolve(s.ctx, old.ID.String())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.Resolve(s.ctx, fresh.ID.String())
	s.NoError(err)

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.Swept))
	s.Contains(s.auditor.actions(), audit.ActionDocumentSwept)
}

func (s *ServiceSuite) TestSweepDisabled() {
	svc := New(s.registry, files.New(s.root), WithRetention(0, 0), WithClock(func() time.Time { return s.now }))

	a := svc.Allocate(s.residence())
	s.writeFile(a.Path, s.now.Add(-72*time.Hour))

	removed, err := svc.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(removed)
	s.FileExists(a.Path)

	s.NoError(svc.Run(s.ctx))
}

func (s *ServiceSuite) TestSweepMissingDirectory() {
	svc := New(s.registry, files.New(filepath.Join(s.root, "absent")))
	removed, err := svc.Sweep(s.ctx)
	s.NoError(err)
	s.Zero(removed)
}

func (s *ServiceSuite) TestRunStopsOnCancel() {
	svc := New(s.registry, files.New(s.root), WithRetention(time.Hour, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop")
	}
}

func (s *ServiceSuite) TestRegisterStoresArtifact() {
	a := artifact.Artifact{ID: uuid.New(), FormType: models.FormBirth, Path: filepath.Join(s.root, "x.pdf")}
	s.Require().NoError(s.service.Register(s.ctx, a))
	s.Equal(1, s.registry.Len())
}
