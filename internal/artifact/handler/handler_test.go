package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"praticai/internal/artifact"
	dErrors "praticai/pkg/domain-errors"
	"praticai/pkg/testutil"
)

type stubService struct {
	artifacts map[string]*artifact.Artifact
}

func (s *stubService) Resolve(_ context.Context, rawID string) (*artifact.Artifact, error) {
	if a, ok := s.artifacts[rawID]; ok {
		return a, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "File non trovato: "+rawID)
}

type HandlerSuite struct {
	suite.Suite
	dir     string
	service *stubService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.service = &stubService{artifacts: map[string]*artifact.Artifact{}}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) add(content string) *artifact.Artifact {
	id := uuid.New()
	name := "aa912_Rossi_Mario_" + id.String() + ".pdf"
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	a := &artifact.Artifact{ID: id, Path: path, FileName: name}
	s.service.artifacts[id.String()] = a
	return a
}

func (s *HandlerSuite) TestDownload() {
	a := s.add("%PDF-1.4 body")

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/download/"+a.ID.String()))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("application/pdf", rr.Header().Get("Content-Type"))
	s.Equal("attachment; filename="+a.FileName, rr.Header().Get("Content-Disposition"))
	s.Equal("%PDF-1.4 body", rr.Body.String())
}

func (s *HandlerSuite) TestDownloadUnknownID() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/download/"+uuid.NewString()))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *HandlerSuite) TestDownloadFileRemovedAfterLookup() {
	a := s.add("%PDF")
	s.Require().NoError(os.Remove(a.Path))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/download/"+a.ID.String()))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}
